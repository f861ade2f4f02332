// Package aggregator folds per-race records into per-season driver and team tallies.
package aggregator

import (
	"fmt"

	"f1stats/internal/config"
	"f1stats/internal/ergast"
	"f1stats/internal/logger"
	"f1stats/internal/models"
	"f1stats/internal/slug"
)

// Options selects the aggregation policies.
type Options struct {
	// PositionSource is config.PositionFromResults (last result wins) or
	// config.PositionFromStandings (official final standings).
	PositionSource string
	// IdentityKey is config.IdentityByName or config.IdentityByID.
	IdentityKey string
	// FoldAccents strips accents from name-derived slugs.
	FoldAccents bool
}

// OptionsFromConfig maps the aggregate config section onto Options.
func OptionsFromConfig(c config.AggregateConfig) Options {
	return Options{
		PositionSource: c.PositionSource,
		IdentityKey:    c.IdentityKey,
		FoldAccents:    c.FoldAccents,
	}
}

// DriverTally accumulates one driver's season.
type DriverTally struct {
	Slug        string
	Name        string
	Team        string
	Points      models.Points
	Wins        int
	Podiums     int
	Poles       int
	FastestLaps int
	Position    *int

	races int
}

// TeamTally accumulates one team's season.
type TeamTally struct {
	Slug        string
	Name        string
	Points      models.Points
	Wins        int
	FastestLaps int
	Position    *int

	races int
}

// SeasonTally is the aggregation result for one season.
type SeasonTally struct {
	Season  int
	Drivers map[string]*DriverTally
	Teams   map[string]*TeamTally
	Gaps    []*models.SchemaGapError
}

// Aggregator turns collected season data into tallies.
type Aggregator struct {
	opts Options
	log  *logger.Logger
}

// New creates an aggregator.
func New(opts Options, log *logger.Logger) *Aggregator {
	if opts.PositionSource == "" {
		opts.PositionSource = config.PositionFromResults
	}

	if opts.IdentityKey == "" {
		opts.IdentityKey = config.IdentityByName
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Aggregator{opts: opts, log: log}
}

// Aggregate folds one season of results, qualifying and standings.
func (a *Aggregator) Aggregate(data *ergast.SeasonData) *SeasonTally {
	t := &SeasonTally{
		Season:  data.Season,
		Drivers: make(map[string]*DriverTally),
		Teams:   make(map[string]*TeamTally),
	}

	names := make(map[string]string, len(data.Drivers))
	for _, d := range data.Drivers {
		if id := string(d.DriverID); id != "" {
			names[id] = d.FullName()
		}
	}

	for _, race := range data.Races {
		for i, r := range race.Results {
			a.addResult(t, race, i, r, names)
		}
	}

	for _, race := range data.Qualifying {
		for i, q := range race.QualifyingResults {
			a.addQualifying(t, race, i, q, names)
		}
	}

	a.applyDriverStandings(t, data.DriverStandings, names)
	a.applyConstructorStandings(t, data.ConstructorStandings)

	for _, d := range data.Drivers {
		if key := a.driverKey(d, names); key != "" {
			a.driver(t, key, d, names)
		}
	}

	return t
}

func (a *Aggregator) addResult(t *SeasonTally, race ergast.Race, idx int, r ergast.Result, names map[string]string) {
	where := fmt.Sprintf("%d/results/round %s/#%d", t.Season, race.Round, idx+1)

	key := a.driverKey(r.Driver, names)
	if key == "" {
		a.gap(t, where, "Driver")
		return
	}

	d := a.driver(t, key, r.Driver, names)
	d.races++

	points, err := models.ParsePoints(string(r.Points))
	if err != nil || r.Points == "" {
		a.gap(t, where, "points")
	}

	d.Points = d.Points.Add(points)

	var team *TeamTally
	if teamKey := a.teamKey(r.Constructor); teamKey != "" {
		team = a.team(t, teamKey, r.Constructor)
		team.races++
		team.Points = team.Points.Add(points)

		if d.Team == "" {
			d.Team = teamName(r.Constructor)
		}
	}

	pos, ok := r.Position.Int()
	if !ok {
		a.gap(t, where, "position")
	}

	if a.opts.PositionSource == config.PositionFromResults {
		if ok {
			d.Position = models.IntPtr(pos)
		} else {
			d.Position = nil
		}
	}

	if ok && pos == 1 {
		d.Wins++

		if team != nil {
			team.Wins++
		}
	}

	if ok && pos >= 1 && pos <= 3 {
		d.Podiums++
	}

	if r.FastestLap != nil {
		if rank, ok := r.FastestLap.Rank.Int(); ok && rank == 1 {
			d.FastestLaps++

			if team != nil {
				team.FastestLaps++
			}
		}
	}
}

func (a *Aggregator) addQualifying(t *SeasonTally, race ergast.Race, idx int, q ergast.QualifyingResult, names map[string]string) {
	where := fmt.Sprintf("%d/qualifying/round %s/#%d", t.Season, race.Round, idx+1)

	key := a.driverKey(q.Driver, names)
	if key == "" {
		a.gap(t, where, "Driver")
		return
	}

	d := a.driver(t, key, q.Driver, names)

	pos, ok := q.Position.Int()
	if !ok {
		a.gap(t, where, "position")
		return
	}

	if pos == 1 {
		d.Poles++
	}
}

// applyDriverStandings sets standings positions and fills drivers that have
// no race results (results endpoint failed or season not started).
func (a *Aggregator) applyDriverStandings(t *SeasonTally, standings []ergast.DriverStanding, names map[string]string) {
	for i, s := range standings {
		key := a.driverKey(s.Driver, names)
		if key == "" {
			a.gap(t, fmt.Sprintf("%d/driverStandings/#%d", t.Season, i+1), "Driver")
			continue
		}

		d := a.driver(t, key, s.Driver, names)

		if a.opts.PositionSource == config.PositionFromStandings {
			if pos, ok := s.Position.Int(); ok {
				d.Position = models.IntPtr(pos)
			} else {
				d.Position = nil
			}
		}

		if d.races > 0 {
			continue
		}

		if p, err := models.ParsePoints(string(s.Points)); err == nil {
			d.Points = p
		}

		if w, ok := s.Wins.Int(); ok {
			d.Wins = w
		}

		if d.Team == "" && len(s.Constructors) > 0 {
			d.Team = teamName(s.Constructors[len(s.Constructors)-1])
		}
	}
}

// applyConstructorStandings is the only source of team positions.
func (a *Aggregator) applyConstructorStandings(t *SeasonTally, standings []ergast.ConstructorStanding) {
	for i, s := range standings {
		key := a.teamKey(s.Constructor)
		if key == "" {
			a.gap(t, fmt.Sprintf("%d/constructorStandings/#%d", t.Season, i+1), "Constructor")
			continue
		}

		team := a.team(t, key, s.Constructor)

		if pos, ok := s.Position.Int(); ok {
			team.Position = models.IntPtr(pos)
		}

		if team.races > 0 {
			continue
		}

		if p, err := models.ParsePoints(string(s.Points)); err == nil {
			team.Points = p
		}

		if w, ok := s.Wins.Int(); ok {
			team.Wins = w
		}
	}
}

func (a *Aggregator) driver(t *SeasonTally, key string, d ergast.Driver, names map[string]string) *DriverTally {
	tally, ok := t.Drivers[key]
	if !ok {
		tally = &DriverTally{Slug: key, Name: displayName(d, names)}
		t.Drivers[key] = tally
	}

	return tally
}

func (a *Aggregator) team(t *SeasonTally, key string, c ergast.Constructor) *TeamTally {
	tally, ok := t.Teams[key]
	if !ok {
		tally = &TeamTally{Slug: key, Name: teamName(c)}
		t.Teams[key] = tally
	}

	return tally
}

func (a *Aggregator) driverKey(d ergast.Driver, names map[string]string) string {
	if a.opts.IdentityKey == config.IdentityByID {
		if key := slug.Slug(string(d.DriverID)); key != "" {
			return key
		}
	}

	if key := a.nameSlug(displayName(d, names)); key != "" {
		return key
	}

	return slug.Slug(string(d.DriverID))
}

func (a *Aggregator) teamKey(c ergast.Constructor) string {
	if a.opts.IdentityKey == config.IdentityByID {
		if key := slug.Slug(string(c.ConstructorID)); key != "" {
			return key
		}
	}

	if key := a.nameSlug(string(c.Name)); key != "" {
		return key
	}

	return slug.Slug(string(c.ConstructorID))
}

func (a *Aggregator) nameSlug(name string) string {
	if a.opts.FoldAccents {
		return slug.ASCII(name)
	}

	return slug.Slug(name)
}

func (a *Aggregator) gap(t *SeasonTally, where, field string) {
	gap := &models.SchemaGapError{Path: where, Field: field}
	t.Gaps = append(t.Gaps, gap)

	a.log.Debug("schema gap, using default", "where", where, "field", field)
}

func displayName(d ergast.Driver, names map[string]string) string {
	if name := d.FullName(); name != "" {
		return name
	}

	return names[string(d.DriverID)]
}

func teamName(c ergast.Constructor) string {
	if c.Name != "" {
		return string(c.Name)
	}

	return string(c.ConstructorID)
}
