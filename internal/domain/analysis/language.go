package analysis

import (
	"path"
	"strings"
)

var extLanguages = map[string]string{
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".py":   "python",
	".java": "java",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".c":    "cpp",
	".h":    "cpp",
	".hpp":  "cpp",
	".go":   "go",
}

// DetectLanguage maps a filename extension to a language name. It returns ""
// when the extension is unknown.
func DetectLanguage(filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	return extLanguages[ext]
}
