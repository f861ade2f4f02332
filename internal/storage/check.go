package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"f1stats/internal/models"
)

// ContextLine is one source line shown around a syntax error.
type ContextLine struct {
	Number int
	Text   string
	Error  bool
}

// SyntaxReport describes the first syntax error of a JSON file, if any.
type SyntaxReport struct {
	Path    string
	Valid   bool
	Message string
	Offset  int64
	Line    int
	Column  int
	Context []ContextLine
}

// CheckJSON parses path and reports where it first stops being valid JSON.
// An unreadable file is an error; invalid JSON is a report with Valid false.
func CheckJSON(path string) (*SyntaxReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	report := &SyntaxReport{Path: path}

	var v any

	err = json.Unmarshal(data, &v)
	if err == nil {
		report.Valid = true
		return report, nil
	}

	pe := models.NewParseError(path, data, err)
	report.Message = err.Error()
	report.Offset = pe.Offset
	report.Line = pe.Line
	report.Column = pe.Column
	report.Context = contextLines(string(data), report.Line)

	return report, nil
}

// contextLines returns lines line-2 through line+1.
func contextLines(text string, line int) []ContextLine {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	start := max(1, line-2)
	end := min(len(lines), line+1)

	var out []ContextLine

	for n := start; n <= end; n++ {
		out = append(out, ContextLine{Number: n, Text: lines[n-1], Error: n == line})
	}

	return out
}

// Render formats the report for a terminal.
func (r *SyntaxReport) Render() string {
	if r.Valid {
		return fmt.Sprintf("OK: %s is valid JSON\n", r.Path)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s: invalid JSON\n", r.Path)
	fmt.Fprintf(&b, "  msg: %s\n", r.Message)
	fmt.Fprintf(&b, "  pos: %d\n", r.Offset)
	fmt.Fprintf(&b, "  line: %d\n", r.Line)
	fmt.Fprintf(&b, "  column: %d\n", r.Column)

	for _, l := range r.Context {
		mark := "  "
		if l.Error {
			mark = "->"
		}

		fmt.Fprintf(&b, "%s %4d: %s\n", mark, l.Number, l.Text)
	}

	return b.String()
}
