package cli

import (
	"github.com/spf13/cobra"

	"f1stats/internal/career"
	"f1stats/internal/storage"
)

// NewChampionshipsCommand creates the championships command.
func NewChampionshipsCommand(rootOpts *RootOptions) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "championships",
		Short: "Count titles from career summaries",
		Long: `Counts the careerSummary rows of every driver that record a Formula One
title and stores the count in allTime.championships. The file is rewritten
only when a count changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}

			path := firstNonEmpty(input, e.cfg.StatsPath())

			doc, err := storage.LoadStats(path)
			if err != nil {
				return err
			}

			out, changed := career.ComputeChampionships(doc)
			if len(changed) == 0 {
				printf(cmd, "ℹ️  No changes; championships already up to date\n")
				return nil
			}

			if err := storage.WriteJSON(path, out); err != nil {
				return err
			}

			printf(cmd, "🏆 Updated championships for %d driver(s): %v\n", len(changed), changed)

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "document to update (default: data.stats)")

	return cmd
}
