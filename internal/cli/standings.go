package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"f1stats/internal/formatter"
	"f1stats/internal/storage"
)

// NewStandingsCommand creates the standings command.
func NewStandingsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		input  string
		season int
	)

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print a season's driver tallies as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}

			doc, err := storage.LoadStats(firstNonEmpty(input, e.cfg.StatsPath()))
			if err != nil {
				return err
			}

			if season == 0 {
				if len(doc.Seasons) == 0 {
					return fmt.Errorf("document has no seasons; pass --season")
				}

				season = doc.Seasons[len(doc.Seasons)-1]
			}

			printf(cmd, "%s\n", formatter.StandingsTable(doc, season))

			return nil
		},
	}

	cmd.Flags().IntVarP(&season, "season", "s", 0, "season to show (default: latest in the document)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "document to read (default: data.stats)")

	return cmd
}
