package cli

import (
	"f1stats/internal/aggregator"
	"f1stats/internal/cache"
	"f1stats/internal/career"
	"f1stats/internal/ergast"
	"f1stats/internal/pipeline"
	"f1stats/internal/reconciler"
	"f1stats/internal/validator"
)

// collector builds the cached source collector. The returned cache must be closed.
func (e *env) collector(offline bool) (*ergast.Collector, cache.Cache, error) {
	cacheCfg := e.cfg.Cache
	if offline {
		cacheCfg.Enabled = true
		cacheCfg.Offline = true
	}

	store, err := cache.Open(cacheCfg)
	if err != nil {
		return nil, nil, err
	}

	client := ergast.NewClient(e.cfg.API, e.cfg.Retry, e.log.With("component", "ergast"))

	return ergast.NewCollector(client, store, cacheCfg.Offline, e.log.With("component", "collector")), store, nil
}

func (e *env) aggregator() *aggregator.Aggregator {
	return aggregator.New(aggregator.OptionsFromConfig(e.cfg.Aggregate), e.log.With("component", "aggregator"))
}

func (e *env) reconciler() *reconciler.Reconciler {
	return reconciler.New(reconciler.Options{DefaultSeasons: e.cfg.Seasons}, e.log.With("component", "reconciler"))
}

func (e *env) validator() *validator.Validator {
	return validator.New(e.cfg.Validation.SuggestionThreshold)
}

func (e *env) juniorFetcher() *career.JuniorFetcher {
	wiki := career.NewWikiClient(e.cfg.Junior.WikiAPI, e.cfg.API.UserAgent, e.cfg.API.PolitenessDelay, e.cfg.Retry, e.log.With("component", "wiki"))
	return career.NewJuniorFetcher(wiki, e.cfg.Junior.MinDebut, e.log.With("component", "junior"))
}

func (e *env) paths() pipeline.Paths {
	return pipeline.Paths{
		Stats:     e.cfg.StatsPath(),
		Generated: e.cfg.GeneratedPath(),
		Fixed:     e.cfg.FixedPath(),
		Roster:    e.cfg.RosterPath(),
		Report:    e.cfg.ReportPath(),
		Career:    e.cfg.CareerPath(),
		Junior:    e.cfg.JuniorPath(),
	}
}
