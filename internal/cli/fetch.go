package cli

import (
	"time"

	"github.com/spf13/cobra"

	"f1stats/internal/storage"
)

type fetchOptions struct {
	seasons []int
	offline bool
	output  string
}

// NewFetchCommand creates the fetch command: collect and aggregate seasons.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch seasons from the API and write the aggregated document",
		Long: `Fetches standings, results, qualifying and drivers for every season and
aggregates them into per-season driver and team tallies. Endpoints that fail
are logged and skipped; the rest of the run continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntSliceVarP(&opts.seasons, "season", "s", nil, "season(s) to fetch (default: configured seasons)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "serve responses from the cache only")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (default: data.generated)")

	return cmd
}

func runFetch(cmd *cobra.Command, rootOpts *RootOptions, opts *fetchOptions) error {
	e, err := rootOpts.load(cmd)
	if err != nil {
		return err
	}

	seasons := opts.seasons
	if len(seasons) == 0 {
		seasons = e.cfg.Seasons
	}

	output := opts.output
	if output == "" {
		output = e.cfg.GeneratedPath()
	}

	collector, store, err := e.collector(opts.offline || e.cfg.Cache.Offline)
	if err != nil {
		return err
	}
	defer store.Close()

	printf(cmd, "🌐 Fetching seasons %v from %s\n", seasons, e.cfg.API.BaseURL)

	start := time.Now()
	collected := collector.Collect(cmd.Context(), seasons)

	failures := 0

	for _, data := range collected {
		failures += len(data.Failures)

		if data.Failed() {
			printf(cmd, "⚠️  %d: %d endpoint(s) failed\n", data.Season, len(data.Failures))
		} else {
			printf(cmd, "✅ %d: %d races\n", data.Season, len(data.Races))
		}
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}

	doc := e.aggregator().Build(seasons, collected)

	if err := storage.WriteJSON(output, doc); err != nil {
		return err
	}

	printf(cmd, "💾 Wrote %s (%d drivers, %d teams, %d failed endpoint(s)) in %v\n",
		output, len(doc.DriverStats), len(doc.TeamStats), failures, time.Since(start).Round(time.Millisecond))

	return nil
}
