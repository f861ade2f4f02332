package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"f1stats/internal/storage"
)

// ErrInvalidJSON is returned by check when the file does not parse.
var ErrInvalidJSON = errors.New("invalid JSON")

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Report where a JSON file stops being valid",
		Long: `Parses the file (default: the statistics document) and prints the line,
column and surrounding lines of the first syntax error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				e, err := rootOpts.load(cmd)
				if err != nil {
					return err
				}

				path = e.cfg.StatsPath()
			}

			report, err := storage.CheckJSON(path)
			if err != nil {
				return err
			}

			printf(cmd, "%s", report.Render())

			if !report.Valid {
				return ErrInvalidJSON
			}

			return nil
		},
	}
}
