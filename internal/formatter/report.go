package formatter

import (
	"fmt"
	"strings"

	"f1stats/internal/validator"
)

// ReportMarkdown renders a discrepancy report as markdown with aligned tables.
func ReportMarkdown(r *validator.Report) string {
	var b strings.Builder

	b.WriteString("# Statistics validation report\n\n")

	s := r.Summary
	b.WriteString("| Check | Count |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Roster drivers | %d |\n", s.EntriesDrivers)
	fmt.Fprintf(&b, "| Drivers in statistics | %d |\n", s.StatsDrivers)
	fmt.Fprintf(&b, "| Missing in statistics | %d |\n", s.MissingInStats)
	fmt.Fprintf(&b, "| Missing in roster | %d |\n", s.MissingInEntries)
	fmt.Fprintf(&b, "| Drivers with missing fields | %d |\n", s.DriversWithMissingFields)

	if r.OK() {
		b.WriteString("\nNo discrepancies.\n")
		return AlignTables(b.String())
	}

	if len(r.MissingInStats) > 0 {
		b.WriteString("\n## Missing in statistics\n\n")
		b.WriteString("| Driver | Name | Team | Did you mean |\n| --- | --- | --- | --- |\n")

		for _, m := range r.MissingInStats {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				escapeCell(m.Slug), escapeCell(m.Name), escapeCell(m.Team), escapeCell(m.Suggestion))
		}
	}

	if len(r.MissingInEntries) > 0 {
		b.WriteString("\n## Missing in roster\n\n")
		b.WriteString("| Driver | Did you mean |\n| --- | --- |\n")

		for _, m := range r.MissingInEntries {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(m.Slug), escapeCell(m.Suggestion))
		}
	}

	if len(r.DriversWithMissingFields) > 0 {
		b.WriteString("\n## Missing fields\n\n")
		b.WriteString("| Driver | Season | Missing |\n| --- | --- | --- |\n")

		for _, d := range r.DriversWithMissingFields {
			if len(d.Missing) > 0 {
				fmt.Fprintf(&b, "| %s | all | %s |\n", escapeCell(d.Slug), strings.Join(d.Missing, ", "))
			}

			for _, sm := range d.SeasonsMissing {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(d.Slug), sm.Season, strings.Join(sm.Missing, ", "))
			}
		}
	}

	return AlignTables(b.String())
}
