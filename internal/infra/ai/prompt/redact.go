package prompt

import (
	"regexp"
	"strings"
)

// Placeholder replaces a detected secret in code sent to the model.
const Placeholder = "[REDACTED]"

// detectors match credential literals that should never leave the service.
// Patterns never span a newline so line numbers in findings stay valid.
var detectors = []*regexp.Regexp{
	// Private keys (header line only, body lines are base64 noise)
	regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
	// AWS
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)aws_secret_access_key[ \t]*[:=][ \t]*["']?[A-Za-z0-9/+=]{20,}`),
	// GitHub
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{20,}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{20,}`),
	// Google
	regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
	// Slack
	regexp.MustCompile(`xox[baprs]-[A-Za-z0-9\-]{10,}`),
	// Stripe
	regexp.MustCompile(`sk_(?:live|test)_[0-9A-Za-z]{10,}`),
	// OpenAI / Groq
	regexp.MustCompile(`(?i)\bsk-[a-z0-9\-_]{20,}`),
	regexp.MustCompile(`gsk_[A-Za-z0-9]{20,}`),
	// JWT
	regexp.MustCompile(`[A-Za-z0-9-_]{8,}\.eyJ[A-Za-z0-9-_]{5,}\.[A-Za-z0-9-_]{10,}`),
	regexp.MustCompile(`(?i)bearer[ \t]+[A-Za-z0-9\-\._~\+\/]{16,}=*`),
	// URL with basic auth
	regexp.MustCompile(`://[^\s/:@]+:[^\s/@]+@`),
}

// Redact masks credential literals in code. It only substitutes within a line,
// so the line count and line numbering are unchanged.
func Redact(code string) (string, int) {
	n := 0
	for _, re := range detectors {
		code = re.ReplaceAllStringFunc(code, func(m string) string {
			if strings.Contains(m, Placeholder) {
				return m
			}
			n++
			if strings.HasPrefix(m, "://") {
				return "://" + Placeholder + "@"
			}
			return Placeholder
		})
	}
	return code, n
}
