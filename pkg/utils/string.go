package utils

import "strings"

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates string to maxLength runes.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	runes := []rune(str)
	if len(runes) <= maxLength {
		return str
	}

	return string(runes[:maxLength]) + "..."
}

// FirstNonEmpty returns the first argument that is not blank.
func (s *StringHelper) FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}

// NormalizeLines collapses whitespace inside each line and drops blank lines.
func (s *StringHelper) NormalizeLines(str string) string {
	var out []string

	for _, line := range strings.Split(str, "\n") {
		if line = s.NormalizeWhitespace(line); line != "" {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
