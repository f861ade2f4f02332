package aggregator

import (
	"f1stats/internal/ergast"
	"f1stats/internal/models"
)

// DriverSeason renders the tally in document form.
func (d *DriverTally) DriverSeason() *models.DriverSeason {
	s := &models.DriverSeason{
		Points:      models.PointsPtr(d.Points),
		Wins:        models.IntPtr(d.Wins),
		Podiums:     models.IntPtr(d.Podiums),
		Poles:       models.IntPtr(d.Poles),
		FastestLaps: models.IntPtr(d.FastestLaps),
	}

	if d.Team != "" {
		s.Team = models.StringPtr(d.Team)
	}

	if d.Position != nil {
		s.Position = models.IntPtr(*d.Position)
	}

	return s
}

// TeamSeason renders the tally in document form.
func (t *TeamTally) TeamSeason() *models.TeamSeason {
	s := &models.TeamSeason{
		Points: models.PointsPtr(t.Points),
		Wins:   models.IntPtr(t.Wins),
	}

	if t.FastestLaps > 0 {
		s.FastestLaps = models.IntPtr(t.FastestLaps)
	}

	if t.Position != nil {
		s.Position = models.IntPtr(*t.Position)
	}

	return s
}

// Merge writes the season tally into doc, replacing that season's counters for
// every driver and team in the tally, and refreshes their all-time totals.
// A team or position the tally lacks keeps its previous value, and members the
// tally does not model are carried over.
func Merge(doc *models.StatsDocument, tally *SeasonTally) {
	key := models.SeasonKey(tally.Season)
	doc.AddSeason(tally.Season)

	for slug, d := range tally.Drivers {
		rec := doc.Driver(slug)
		season := d.DriverSeason()

		if prev := rec.BySeason[key]; prev != nil {
			if season.Team == nil {
				season.Team = prev.Team
			}

			if season.Position == nil {
				season.Position = prev.Position
			}

			season.Extra = prev.Extra
		}

		rec.BySeason[key] = season
		rec.RecomputeAllTime()
	}

	for slug, t := range tally.Teams {
		rec := doc.Team(slug)
		season := t.TeamSeason()

		if prev := rec.BySeason[key]; prev != nil {
			if season.Position == nil {
				season.Position = prev.Position
			}

			season.Extra = prev.Extra
		}

		rec.BySeason[key] = season
		rec.RecomputeAllTime()
	}
}

// Build aggregates every collected season into a fresh document covering seasons.
func (a *Aggregator) Build(seasons []int, collected []*ergast.SeasonData) *models.StatsDocument {
	return a.BuildOnto(nil, seasons, collected)
}

// BuildOnto folds every collected season into a copy of base. Records and
// fields the API does not produce (career summaries, junior careers,
// championships, unknown members) survive. A nil base starts from an empty
// document.
func (a *Aggregator) BuildOnto(base *models.StatsDocument, seasons []int, collected []*ergast.SeasonData) *models.StatsDocument {
	doc := models.NewStatsDocument(seasons)
	if base != nil {
		doc = base.Clone()
		for _, s := range seasons {
			doc.AddSeason(s)
		}
	}

	for _, data := range collected {
		tally := a.Aggregate(data)
		Merge(doc, tally)

		a.log.Info("season aggregated",
			"season", data.Season,
			"drivers", len(tally.Drivers),
			"teams", len(tally.Teams),
			"gaps", len(tally.Gaps),
			"failures", len(data.Failures))
	}

	return doc
}
