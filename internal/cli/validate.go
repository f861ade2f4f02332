package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"f1stats/internal/formatter"
	"f1stats/internal/storage"
)

type validateOptions struct {
	input    string
	output   string
	markdown bool
	strict   bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare the statistics document with the roster",
		Long: `Writes a discrepancy report listing roster drivers missing from the
statistics, statistics drivers missing from the roster and drivers with null
fields. The report is advisory unless --strict is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "document to validate (default: data.stats)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report path (default: data.report)")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "print the report as markdown")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit nonzero when discrepancies are found (default: validation.strict)")

	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, opts *validateOptions) error {
	e, err := rootOpts.load(cmd)
	if err != nil {
		return err
	}

	input := firstNonEmpty(opts.input, e.cfg.StatsPath())
	output := firstNonEmpty(opts.output, e.cfg.ReportPath())

	doc, err := storage.LoadStats(input)
	if err != nil {
		return err
	}

	roster, err := storage.LoadRoster(e.cfg.RosterPath())
	if err != nil {
		return err
	}

	report := e.validator().Validate(roster, doc)

	if err := storage.WriteJSON(output, report); err != nil {
		return err
	}

	if opts.markdown {
		printf(cmd, "%s", formatter.ReportMarkdown(report))
	}

	s := report.Summary
	printf(cmd, "📊 %d roster drivers, %d in statistics\n", s.EntriesDrivers, s.StatsDrivers)

	if report.OK() {
		printf(cmd, "✅ No discrepancies; wrote %s\n", output)
		return nil
	}

	printf(cmd, "⚠️  %d missing in stats, %d missing in roster, %d with missing fields; wrote %s\n",
		s.MissingInStats, s.MissingInEntries, s.DriversWithMissingFields, output)

	if opts.strict || e.cfg.Validation.Strict {
		return fmt.Errorf("%w: see %s", ErrDiscrepancies, output)
	}

	return nil
}
