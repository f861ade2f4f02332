// Package models defines the statistics document, the roster and the error kinds
// shared by every f1stats stage.
package models

import (
	"encoding/json"
	"sort"
	"strconv"
)

// DriverSeason is a driver's tally for one season. Pointer fields distinguish
// an absent field from a zero value.
type DriverSeason struct {
	Team        *string `json:"team"`
	Points      *Points `json:"points"`
	Wins        *int    `json:"wins"`
	Podiums     *int    `json:"podiums"`
	Poles       *int    `json:"poles"`
	FastestLaps *int    `json:"fastestLaps"`
	Position    *int    `json:"position"`

	Extra Extra `json:"-"`
}

// DriverAllTime is the sum of a driver's season tallies.
type DriverAllTime struct {
	Points        Points `json:"points"`
	Wins          int    `json:"wins"`
	Podiums       int    `json:"podiums"`
	Poles         int    `json:"poles"`
	FastestLaps   int    `json:"fastestLaps"`
	Championships *int   `json:"championships,omitempty"`

	Extra Extra `json:"-"`
}

// CareerRow is one line of a driver's career summary.
type CareerRow struct {
	Season   string `json:"season,omitempty"`
	Series   string `json:"series"`
	Team     string `json:"team,omitempty"`
	Position string `json:"position"`

	Extra Extra `json:"-"`
}

// JuniorCareer lists the years a driver raced in the feeder championships.
type JuniorCareer struct {
	F2Years        []int  `json:"F2_years"`
	F3Years        []int  `json:"F3_years"`
	WikipediaTitle string `json:"wikipedia_title,omitempty"`

	Extra Extra `json:"-"`
}

// DriverRecord holds everything known about one driver.
type DriverRecord struct {
	BySeason       map[string]*DriverSeason `json:"bySeason"`
	AllTime        *DriverAllTime           `json:"allTime"`
	CareerSummary  []CareerRow              `json:"careerSummary,omitempty"`
	JuniorCareer   *JuniorCareer            `json:"juniorCareer,omitempty"`
	CareerFromWiki json.RawMessage          `json:"careerFromWiki,omitempty"`

	Extra Extra `json:"-"`
}

// TeamSeason is a team's tally for one season.
type TeamSeason struct {
	Points      *Points `json:"points"`
	Wins        *int    `json:"wins"`
	FastestLaps *int    `json:"fastestLaps,omitempty"`
	Position    *int    `json:"position"`

	Extra Extra `json:"-"`
}

// TeamAllTime is the sum of a team's season tallies.
type TeamAllTime struct {
	Points Points `json:"points"`
	Wins   int    `json:"wins"`

	Extra Extra `json:"-"`
}

// TeamRecord holds everything known about one team.
type TeamRecord struct {
	BySeason map[string]*TeamSeason `json:"bySeason"`
	AllTime  *TeamAllTime           `json:"allTime"`

	Extra Extra `json:"-"`
}

// StatsDocument is the canonical statistics file.
type StatsDocument struct {
	Seasons     []int                    `json:"seasons"`
	DriverStats map[string]*DriverRecord `json:"driverStats"`
	TeamStats   map[string]*TeamRecord   `json:"teamStats"`

	Extra Extra `json:"-"`
}

// NewStatsDocument returns an empty document covering seasons.
func NewStatsDocument(seasons []int) *StatsDocument {
	doc := &StatsDocument{
		Seasons:     []int{},
		DriverStats: make(map[string]*DriverRecord),
		TeamStats:   make(map[string]*TeamRecord),
	}

	for _, s := range seasons {
		doc.AddSeason(s)
	}

	return doc
}

// SeasonKey formats a season the way the document keys it.
func SeasonKey(season int) string {
	return strconv.Itoa(season)
}

// Driver returns the record for slug, creating it when absent.
func (d *StatsDocument) Driver(slug string) *DriverRecord {
	if d.DriverStats == nil {
		d.DriverStats = make(map[string]*DriverRecord)
	}

	rec, ok := d.DriverStats[slug]
	if !ok || rec == nil {
		rec = &DriverRecord{BySeason: make(map[string]*DriverSeason)}
		d.DriverStats[slug] = rec
	}

	if rec.BySeason == nil {
		rec.BySeason = make(map[string]*DriverSeason)
	}

	return rec
}

// Team returns the record for slug, creating it when absent.
func (d *StatsDocument) Team(slug string) *TeamRecord {
	if d.TeamStats == nil {
		d.TeamStats = make(map[string]*TeamRecord)
	}

	rec, ok := d.TeamStats[slug]
	if !ok || rec == nil {
		rec = &TeamRecord{BySeason: make(map[string]*TeamSeason)}
		d.TeamStats[slug] = rec
	}

	if rec.BySeason == nil {
		rec.BySeason = make(map[string]*TeamSeason)
	}

	return rec
}

// AddSeason appends season to the horizon if missing and keeps it sorted.
func (d *StatsDocument) AddSeason(season int) {
	for _, s := range d.Seasons {
		if s == season {
			return
		}
	}

	d.Seasons = append(d.Seasons, season)
	sort.Ints(d.Seasons)
}

// DriverSlugs returns the driver keys in sorted order.
func (d *StatsDocument) DriverSlugs() []string {
	return sortedKeys(d.DriverStats)
}

// TeamSlugs returns the team keys in sorted order.
func (d *StatsDocument) TeamSlugs() []string {
	return sortedKeys(d.TeamStats)
}

// Clone deep-copies the document through its JSON form, which is the only
// representation stages agree on.
func (d *StatsDocument) Clone() *StatsDocument {
	data, err := json.Marshal(d)
	if err != nil {
		panic("models: stats document is not serializable: " + err.Error())
	}

	var out StatsDocument
	if err := json.Unmarshal(data, &out); err != nil {
		panic("models: stats document does not round-trip: " + err.Error())
	}

	return &out
}

// RecomputeAllTime rebuilds allTime from bySeason. Championships and unknown
// members are kept.
func (r *DriverRecord) RecomputeAllTime() {
	at := &DriverAllTime{}
	if r.AllTime != nil {
		at.Championships = r.AllTime.Championships
		at.Extra = r.AllTime.Extra
	}

	for _, s := range r.BySeason {
		if s == nil {
			continue
		}

		if s.Points != nil {
			at.Points = at.Points.Add(*s.Points)
		}

		at.Wins += IntValue(s.Wins)
		at.Podiums += IntValue(s.Podiums)
		at.Poles += IntValue(s.Poles)
		at.FastestLaps += IntValue(s.FastestLaps)
	}

	r.AllTime = at
}

// RecomputeAllTime rebuilds allTime from bySeason.
func (r *TeamRecord) RecomputeAllTime() {
	at := &TeamAllTime{}
	if r.AllTime != nil {
		at.Extra = r.AllTime.Extra
	}

	for _, s := range r.BySeason {
		if s == nil {
			continue
		}

		if s.Points != nil {
			at.Points = at.Points.Add(*s.Points)
		}

		at.Wins += IntValue(s.Wins)
	}

	r.AllTime = at
}

// ZeroDriverSeason returns a fully populated all-zero tally.
func ZeroDriverSeason(team string) *DriverSeason {
	return &DriverSeason{
		Team:        StringPtr(team),
		Points:      PointsPtr(Points{}),
		Wins:        IntPtr(0),
		Podiums:     IntPtr(0),
		Poles:       IntPtr(0),
		FastestLaps: IntPtr(0),
	}
}

// ZeroTeamSeason returns a fully populated all-zero tally.
func ZeroTeamSeason() *TeamSeason {
	return &TeamSeason{
		Points: PointsPtr(Points{}),
		Wins:   IntPtr(0),
	}
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// PointsPtr returns a pointer to v.
func PointsPtr(v Points) *Points { return &v }

// IntValue dereferences p, treating nil as zero.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}

	return *p
}

// StringValue dereferences p, treating nil as empty.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
