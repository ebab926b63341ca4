package middleware

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

// maxFilenameLen bounds the stored filename column.
const maxFilenameLen = 255

// ValidateAnalysisID checks that id is a UUID as issued by the orchestrator.
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// SanitizeFilename keeps only the base name of a client supplied filename,
// without control characters. It is display metadata and never opened.
func SanitizeFilename(name string) string {
	name = SanitizeString(strings.ReplaceAll(name, "\n", ""))
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	if len(name) > maxFilenameLen {
		name = strings.ToValidUTF8(name[:maxFilenameLen], "")
	}
	return name
}

// ValidatePage returns a 1-based page number.
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
