package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"f1stats/internal/pipeline"
)

// ErrAllStagesFailed is returned when no pipeline stage succeeded.
var ErrAllStagesFailed = errors.New("every pipeline stage failed")

type pipelineOptions struct {
	seasons []int
	offline bool
	junior  bool
}

// NewPipelineCommand creates the pipeline command.
func NewPipelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &pipelineOptions{}

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run fetch, reconcile and validate, then write the final document",
		Long: `Runs every stage in order, tolerating individual failures, then writes the
statistics document from the best output of the run (reconciled, else
aggregated) with the auxiliary career data attached, and recomputes
championship counts. Exits nonzero only when every stage failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntSliceVarP(&opts.seasons, "season", "s", nil, "season(s) to fetch (default: configured seasons)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "serve responses from the cache only")
	cmd.Flags().BoolVar(&opts.junior, "junior", false, "also look up junior careers (default: junior.enabled)")

	return cmd
}

func runPipeline(cmd *cobra.Command, rootOpts *RootOptions, opts *pipelineOptions) error {
	e, err := rootOpts.load(cmd)
	if err != nil {
		return err
	}

	seasons := opts.seasons
	if len(seasons) == 0 {
		seasons = e.cfg.Seasons
	}

	collector, store, err := e.collector(opts.offline || e.cfg.Cache.Offline)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := pipeline.Deps{
		Collector:  collector,
		Aggregator: e.aggregator(),
		Reconciler: e.reconciler(),
		Validator:  e.validator(),
	}

	if opts.junior || e.cfg.Junior.Enabled {
		deps.Juniors = e.juniorFetcher()
	}

	res, err := pipeline.New(deps, e.paths(), seasons, e.log, cmd.OutOrStdout()).Run(cmd.Context())
	if err != nil {
		return err
	}

	if res.AllFailed() {
		return ErrAllStagesFailed
	}

	return nil
}
