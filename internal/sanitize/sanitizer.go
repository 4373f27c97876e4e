package sanitize

// Sanitizer applies redaction patterns to text.
type Sanitizer struct {
	patterns []Pattern
}

// NewSanitizer creates a Sanitizer with the default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{patterns: DefaultPatterns()}
}

// NewSanitizerWithPatterns creates a Sanitizer with custom patterns.
func NewSanitizerWithPatterns(patterns []Pattern) *Sanitizer {
	return &Sanitizer{patterns: patterns}
}

// Sanitize returns input with every match replaced by its placeholder.
func (s *Sanitizer) Sanitize(input string) string {
	if s == nil || input == "" {
		return input
	}
	result := input
	for _, p := range s.patterns {
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// SanitizeAll sanitizes each input, returning a new slice.
func (s *Sanitizer) SanitizeAll(inputs []string) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = s.Sanitize(in)
	}
	return out
}
