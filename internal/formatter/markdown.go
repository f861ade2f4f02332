// Package formatter renders reports and standings for people to read.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// AlignTables pads every markdown table in content so that its columns line
// up by display width. Other lines pass through unchanged.
func AlignTables(content string) string {
	lines := strings.Split(content, "\n")

	var out []string

	var table []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, line)
			continue
		}

		if len(table) > 0 {
			out = append(out, alignTable(table)...)
			table = nil
		}

		out = append(out, line)
	}

	if len(table) > 0 {
		out = append(out, alignTable(table)...)
	}

	return strings.Join(out, "\n")
}

func alignTable(rows []string) []string {
	// header and separator at least
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))
	cols := 0

	for _, row := range rows {
		cells := splitRow(row)
		if len(cells) > cols {
			cols = len(cells)
		}

		table = append(table, cells)
	}

	sepIdx := -1
	if isSeparator(table[1]) {
		sepIdx = 1
	}

	widths := make([]int, cols)

	for i, row := range table {
		if i == sepIdx {
			continue
		}

		for j, cell := range row {
			widths[j] = max(widths[j], runewidth.StringWidth(cell))
		}
	}

	for j := range widths {
		widths[j] = max(widths[j], 3)
	}

	out := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < cols; j++ {
			sb.WriteString(" ")

			if i == sepIdx {
				sb.WriteString(strings.Repeat("-", widths[j]))
			} else {
				cell := ""
				if j < len(row) {
					cell = row[j]
				}

				sb.WriteString(runewidth.FillRight(cell, widths[j]))
			}

			sb.WriteString(" |")
		}

		out = append(out, sb.String())
	}

	return out
}

// splitRow splits "| a | b |" into trimmed cells. Escaped pipes stay in the cell.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")

	var cells []string

	var cur strings.Builder

	escaped := false

	for _, r := range row {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}

	return append(cells, strings.TrimSpace(cur.String()))
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}

	return len(cells) > 0
}

// escapeCell makes s safe inside a table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
