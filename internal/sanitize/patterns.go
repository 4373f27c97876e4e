// Package sanitize redacts personal contact details and credentials from
// source text before it is embedded in a prompt for a remote model.
package sanitize

import "regexp"

// Pattern is a compiled redaction rule.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// redactionPatterns are applied in order. Credential rules run before the
// email rule so "token=a@b" style strings are caught whole. Generic secrets
// need a credential-length value and phone numbers need a label, so ordinary
// prose such as "each token: a subword" is left alone.
var redactionPatterns = []Pattern{
	{
		Name:        "PEM Block",
		Regex:       regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]+?-----END [A-Z ]+-----`),
		Replacement: "[PEM_BLOCK_REDACTED]",
	},
	{
		Name:        "Bearer Token",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{20,}`),
		Replacement: "Bearer [TOKEN_REDACTED]",
	},
	{
		Name:        "Hugging Face Token",
		Regex:       regexp.MustCompile(`hf_[A-Za-z0-9]{30,}`),
		Replacement: "[HF_TOKEN_REDACTED]",
	},
	{
		Name:        "Generic Secret",
		Regex:       regexp.MustCompile(`(?i)\b(password|token|secret|api[_-]?key)\s*[=:]\s*\S{16,}`),
		Replacement: "$1=[REDACTED]",
	},
	{
		Name:        "Email Address",
		Regex:       regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		Replacement: "[EMAIL_REDACTED]",
	},
	{
		Name:        "Phone Number",
		Regex:       regexp.MustCompile(`(?i)\b(tel|phone|fax)(\.?\s*:?\s*)\+?\d[\d\s().-]{6,}\d`),
		Replacement: "$1$2[PHONE_REDACTED]",
	},
}

// DefaultPatterns returns a copy of the built-in redaction rules.
func DefaultPatterns() []Pattern {
	result := make([]Pattern, len(redactionPatterns))
	copy(result, redactionPatterns)
	return result
}
