package cli

import (
	"github.com/spf13/cobra"

	"f1stats/internal/storage"
)

type juniorOptions struct {
	input    string
	minDebut int
}

// NewJuniorCommand creates the junior command.
func NewJuniorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &juniorOptions{}

	cmd := &cobra.Command{
		Use:   "junior",
		Short: "Look up Formula 2 and Formula 3 years of recent debutants",
		Long: `For every driver whose first classified season is at least --min-debut,
searches Wikipedia for the driver's page and collects the years mentioned
near Formula 2 and Formula 3. Results go to data.junior and are attached to
the input document as juniorCareer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJunior(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "document to read and update (default: data.generated, else data.stats)")
	cmd.Flags().IntVar(&opts.minDebut, "min-debut", 0, "earliest debut season to inspect (default: junior.min_debut)")

	return cmd
}

func runJunior(cmd *cobra.Command, rootOpts *RootOptions, opts *juniorOptions) error {
	e, err := rootOpts.load(cmd)
	if err != nil {
		return err
	}

	if opts.minDebut > 0 {
		e.cfg.Junior.MinDebut = opts.minDebut
	}

	input := opts.input
	if input == "" {
		input = e.cfg.GeneratedPath()
		if !storage.Exists(input) {
			input = e.cfg.StatsPath()
		}
	}

	doc, err := storage.LoadStats(input)
	if err != nil {
		return err
	}

	names := map[string]string{}

	if roster, rerr := storage.LoadRoster(e.cfg.RosterPath()); rerr == nil {
		for s, entry := range roster.ByDriverSlug() {
			names[s] = entry.Driver.Name
		}
	}

	fetcher := e.juniorFetcher()
	printf(cmd, "🔎 Found %d driver(s) with debut >= %d\n", len(fetcher.Targets(doc)), e.cfg.Junior.MinDebut)

	updated, results, runErr := fetcher.Run(cmd.Context(), doc, names)

	// partial results are still written when the run was interrupted
	if err := storage.WriteJSON(e.cfg.JuniorPath(), results); err != nil {
		return err
	}

	printf(cmd, "💾 Wrote %s (%d driver(s))\n", e.cfg.JuniorPath(), len(results))

	if err := storage.WriteJSON(input, updated); err != nil {
		return err
	}

	printf(cmd, "✅ Updated %s\n", input)

	return runErr
}
