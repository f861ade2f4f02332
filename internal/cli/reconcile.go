package cli

import (
	"github.com/spf13/cobra"

	"f1stats/internal/storage"
)

type reconcileOptions struct {
	input  string
	output string
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fill the statistics document against the roster",
		Long: `Ensures every roster driver and team has a tally for every season, fills
missing fields without touching existing values and recomputes all-time
totals. The input file is backed up once before the reconciled document is
written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "document to reconcile (default: data.stats)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (default: data.fixed)")

	return cmd
}

func runReconcile(cmd *cobra.Command, rootOpts *RootOptions, opts *reconcileOptions) error {
	e, err := rootOpts.load(cmd)
	if err != nil {
		return err
	}

	input := firstNonEmpty(opts.input, e.cfg.StatsPath())
	output := firstNonEmpty(opts.output, e.cfg.FixedPath())

	doc, err := storage.LoadStats(input)
	if err != nil {
		return err
	}

	roster, err := storage.LoadRoster(e.cfg.RosterPath())
	if err != nil {
		return err
	}

	printf(cmd, "📋 Roster: %d teams, %d drivers\n", len(roster.Teams), len(roster.Entries()))

	bak, err := storage.Backup(input)
	if err != nil {
		return err
	}

	if bak != "" {
		printf(cmd, "💾 Backup: %s\n", bak)
	}

	fixed, changes := e.reconciler().Reconcile(doc, roster)

	if err := storage.WriteJSON(output, fixed); err != nil {
		return err
	}

	if changes.Empty() {
		printf(cmd, "✅ Nothing to fill; wrote %s\n", output)
		return nil
	}

	printf(cmd, "🔧 %s\n", changes)
	printf(cmd, "✅ Wrote %s\n", output)

	return nil
}
