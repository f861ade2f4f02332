// Package reconciler fills the statistics document against the roster of record.
package reconciler

import (
	"fmt"

	"dario.cat/mergo"

	"f1stats/internal/logger"
	"f1stats/internal/models"
	"f1stats/internal/slug"
)

// Options controls the season horizon.
type Options struct {
	// DefaultSeasons is used when neither the document nor the roster names a season.
	DefaultSeasons []int
}

// Changes summarizes what a reconciliation pass added.
type Changes struct {
	DriversAdded       []string `json:"driversAdded"`
	DriverSeasonsAdded int      `json:"driverSeasonsAdded"`
	TeamsAdded         []string `json:"teamsAdded"`
	TeamSeasonsAdded   int      `json:"teamSeasonsAdded"`
	FieldsFilled       int      `json:"fieldsFilled"`
	AllTimeUpdated     int      `json:"allTimeUpdated"`
}

// Empty reports whether the pass changed nothing.
func (c Changes) Empty() bool {
	return len(c.DriversAdded) == 0 && c.DriverSeasonsAdded == 0 &&
		len(c.TeamsAdded) == 0 && c.TeamSeasonsAdded == 0 &&
		c.FieldsFilled == 0 && c.AllTimeUpdated == 0
}

func (c Changes) String() string {
	return fmt.Sprintf("drivers added: %d, driver seasons added: %d, teams added: %d, team seasons added: %d, fields filled: %d, all-time updated: %d",
		len(c.DriversAdded), c.DriverSeasonsAdded, len(c.TeamsAdded), c.TeamSeasonsAdded, c.FieldsFilled, c.AllTimeUpdated)
}

// Reconciler ensures every roster driver and team has a tally for every season.
type Reconciler struct {
	opts Options
	log  *logger.Logger
}

// New creates a reconciler.
func New(opts Options, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Discard()
	}

	return &Reconciler{opts: opts, log: log}
}

// Reconcile returns a reconciled copy of doc; doc itself is not modified.
func (r *Reconciler) Reconcile(doc *models.StatsDocument, roster *models.Roster) (*models.StatsDocument, Changes) {
	out := doc.Clone()
	changes := Changes{}

	seasons := r.horizon(out, roster)
	if len(out.Seasons) == 0 {
		for _, s := range seasons {
			out.AddSeason(s)
		}
	}

	entries := roster.Entries()
	inRoster := make(map[string]bool, len(entries))

	for _, e := range entries {
		inRoster[e.Driver.Slug] = true

		if _, ok := out.DriverStats[e.Driver.Slug]; !ok {
			changes.DriversAdded = append(changes.DriversAdded, e.Driver.Slug)
		}

		rec := out.Driver(e.Driver.Slug)
		for _, season := range seasons {
			r.ensureDriverSeason(out, rec, season, e.Driver.Slug, &e.Team, &changes)
		}
	}

	for _, driverSlug := range out.DriverSlugs() {
		if inRoster[driverSlug] {
			continue
		}

		rec := out.Driver(driverSlug)
		for _, season := range seasons {
			r.ensureDriverSeason(out, rec, season, driverSlug, nil, &changes)
		}
	}

	for _, team := range roster.Teams {
		if team.Slug == "" {
			continue
		}

		if _, ok := out.TeamStats[team.Slug]; !ok {
			changes.TeamsAdded = append(changes.TeamsAdded, team.Slug)
		}

		out.Team(team.Slug)
	}

	for _, teamSlug := range out.TeamSlugs() {
		rec := out.Team(teamSlug)
		for _, season := range seasons {
			r.ensureTeamSeason(rec, season, &changes)
		}
	}

	for _, driverSlug := range out.DriverSlugs() {
		rec := out.DriverStats[driverSlug]
		before := rec.AllTime
		rec.RecomputeAllTime()

		if !driverAllTimeEqual(before, rec.AllTime) {
			changes.AllTimeUpdated++
		}
	}

	for _, teamSlug := range out.TeamSlugs() {
		rec := out.TeamStats[teamSlug]
		before := rec.AllTime
		rec.RecomputeAllTime()

		if !teamAllTimeEqual(before, rec.AllTime) {
			changes.AllTimeUpdated++
		}
	}

	r.log.Info("reconciled", "seasons", seasons, "changes", changes.String())

	return out, changes
}

// horizon is the document's seasons, else the roster season, else the defaults.
func (r *Reconciler) horizon(doc *models.StatsDocument, roster *models.Roster) []int {
	if len(doc.Seasons) > 0 {
		return doc.Seasons
	}

	if roster.Season != 0 {
		return []int{roster.Season}
	}

	return r.opts.DefaultSeasons
}

func (r *Reconciler) ensureDriverSeason(doc *models.StatsDocument, rec *models.DriverRecord, season int, driverSlug string, team *models.RosterTeam, changes *Changes) {
	key := models.SeasonKey(season)

	existing, ok := rec.BySeason[key]
	if !ok || existing == nil {
		rec.BySeason[key] = models.ZeroDriverSeason(guessTeam(doc, key, driverSlug, team))
		changes.DriverSeasonsAdded++

		return
	}

	missing := missingDriverFields(existing)
	if len(missing) == 0 {
		return
	}

	defaults := models.ZeroDriverSeason("")
	if existing.Team == nil {
		defaults.Team = models.StringPtr(guessTeam(doc, key, driverSlug, team))
	}

	// fills nil fields only; set values are never touched
	if err := mergo.Merge(existing, defaults); err != nil {
		r.log.Warn("failed to fill driver season", "driver", driverSlug, "season", key, "error", err)
		return
	}

	changes.FieldsFilled += len(missing) - len(missingDriverFields(existing))
}

func (r *Reconciler) ensureTeamSeason(rec *models.TeamRecord, season int, changes *Changes) {
	key := models.SeasonKey(season)

	existing, ok := rec.BySeason[key]
	if !ok || existing == nil {
		rec.BySeason[key] = models.ZeroTeamSeason()
		changes.TeamSeasonsAdded++

		return
	}

	before := missingTeamFields(existing)
	if before == 0 {
		return
	}

	if err := mergo.Merge(existing, models.ZeroTeamSeason()); err != nil {
		r.log.Warn("failed to fill team season", "season", key, "error", err)
		return
	}

	changes.FieldsFilled += before - missingTeamFields(existing)
}

// guessTeam picks a team name for a driver-season in order: the driver's own
// tally, another driver's tally whose team matches the roster team, the
// roster team name. Drivers outside the roster fall back to "".
func guessTeam(doc *models.StatsDocument, seasonKey, driverSlug string, team *models.RosterTeam) string {
	if own := doc.DriverStats[driverSlug]; own != nil {
		if s := own.BySeason[seasonKey]; s != nil && models.StringValue(s.Team) != "" {
			return *s.Team
		}
	}

	if team == nil {
		return ""
	}

	for _, other := range doc.DriverSlugs() {
		if other == driverSlug {
			continue
		}

		s := doc.DriverStats[other].BySeason[seasonKey]
		if s == nil || models.StringValue(s.Team) == "" {
			continue
		}

		if slug.Matches(*s.Team, team.Slug) {
			return *s.Team
		}
	}

	return team.Name
}

// missingDriverFields lists absent tally fields. Position may be null.
func missingDriverFields(s *models.DriverSeason) []string {
	var missing []string

	if s.Team == nil {
		missing = append(missing, "team")
	}

	if s.Points == nil {
		missing = append(missing, "points")
	}

	if s.Wins == nil {
		missing = append(missing, "wins")
	}

	if s.Podiums == nil {
		missing = append(missing, "podiums")
	}

	if s.Poles == nil {
		missing = append(missing, "poles")
	}

	if s.FastestLaps == nil {
		missing = append(missing, "fastestLaps")
	}

	return missing
}

func missingTeamFields(s *models.TeamSeason) int {
	n := 0

	if s.Points == nil {
		n++
	}

	if s.Wins == nil {
		n++
	}

	return n
}

func driverAllTimeEqual(a, b *models.DriverAllTime) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Points.Equal(b.Points) && a.Wins == b.Wins && a.Podiums == b.Podiums &&
		a.Poles == b.Poles && a.FastestLaps == b.FastestLaps
}

func teamAllTimeEqual(a, b *models.TeamAllTime) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Points.Equal(b.Points) && a.Wins == b.Wins
}
