// Package validator compares the statistics document with the roster and
// reports discrepancies. It never modifies the document.
package validator

import (
	"encoding/json"
	"sort"

	"github.com/antzucaro/matchr"

	"f1stats/internal/models"
	"f1stats/internal/slug"
)

// DefaultSuggestionThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const DefaultSuggestionThreshold = 0.85

// MissingInStats is a roster driver with no statistics record.
type MissingInStats struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Team       string `json:"team"`
	Suggestion string `json:"suggestion,omitempty"`
}

// MissingInEntries is a statistics record with no roster driver.
type MissingInEntries struct {
	Slug       string `json:"slug"`
	Suggestion string `json:"suggestion,omitempty"`
}

// SeasonMissing lists the null fields of one season tally.
type SeasonMissing struct {
	Season  string   `json:"season"`
	Missing []string `json:"missing"`
}

// DriverMissingFields lists a driver's absent structures and season gaps.
type DriverMissingFields struct {
	Slug           string          `json:"slug"`
	Missing        []string        `json:"missing"`
	SeasonsMissing []SeasonMissing `json:"seasonsMissing"`
}

// Summary carries the report counts.
type Summary struct {
	EntriesDrivers           int `json:"entriesDrivers"`
	StatsDrivers             int `json:"statsDrivers"`
	MissingInStats           int `json:"missingInStats"`
	MissingInEntries         int `json:"missingInEntries"`
	DriversWithMissingFields int `json:"driversWithMissingFields"`
}

// Report is the discrepancy report.
type Report struct {
	MissingInStats           []MissingInStats      `json:"missingInStats"`
	MissingInEntries         []MissingInEntries    `json:"missingInEntries"`
	DriversWithMissingFields []DriverMissingFields `json:"driversWithMissingFields"`
	Summary                  Summary               `json:"summary"`
}

// OK reports whether the document matches the roster with no gaps.
func (r *Report) OK() bool {
	return len(r.MissingInStats) == 0 && len(r.MissingInEntries) == 0 && len(r.DriversWithMissingFields) == 0
}

// JSON renders the report the way it is written to disk.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// Validator builds discrepancy reports.
type Validator struct {
	threshold float64
}

// New creates a validator. A threshold outside (0, 1] means DefaultSuggestionThreshold.
func New(threshold float64) *Validator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSuggestionThreshold
	}

	return &Validator{threshold: threshold}
}

// Validate compares roster and doc.
func (v *Validator) Validate(roster *models.Roster, doc *models.StatsDocument) *Report {
	report := &Report{
		MissingInStats:           []MissingInStats{},
		MissingInEntries:         []MissingInEntries{},
		DriversWithMissingFields: []DriverMissingFields{},
	}

	entries := roster.Entries()
	rosterSlugs := make([]string, 0, len(entries))
	inRoster := make(map[string]bool, len(entries))

	for _, e := range entries {
		rosterSlugs = append(rosterSlugs, e.Driver.Slug)
		inRoster[e.Driver.Slug] = true
	}

	statsSlugs := doc.DriverSlugs()
	inStats := make(map[string]bool, len(statsSlugs))

	for _, s := range statsSlugs {
		inStats[s] = true
	}

	for _, e := range entries {
		if _, ok := doc.DriverStats[e.Driver.Slug]; ok {
			continue
		}

		report.MissingInStats = append(report.MissingInStats, MissingInStats{
			Slug:       e.Driver.Slug,
			Name:       e.Driver.Name,
			Team:       e.Team.Slug,
			Suggestion: v.closest(e.Driver.Slug, statsSlugs, inRoster),
		})
	}

	for _, s := range statsSlugs {
		if inRoster[s] {
			continue
		}

		report.MissingInEntries = append(report.MissingInEntries, MissingInEntries{
			Slug:       s,
			Suggestion: v.closest(s, rosterSlugs, inStats),
		})
	}

	for _, s := range statsSlugs {
		if !inRoster[s] {
			continue
		}

		if gaps := driverGaps(s, doc.DriverStats[s]); gaps != nil {
			report.DriversWithMissingFields = append(report.DriversWithMissingFields, *gaps)
		}
	}

	report.Summary = Summary{
		EntriesDrivers:           len(entries),
		StatsDrivers:             len(statsSlugs),
		MissingInStats:           len(report.MissingInStats),
		MissingInEntries:         len(report.MissingInEntries),
		DriversWithMissingFields: len(report.DriversWithMissingFields),
	}

	return report
}

// closest returns the candidate most similar to target when it clears the
// threshold. Candidates in skip are ignored.
func (v *Validator) closest(target string, candidates []string, skip map[string]bool) string {
	best, bestScore := "", 0.0
	folded := slug.ASCII(target)

	for _, c := range candidates {
		if c == target || skip[c] {
			continue
		}

		score := matchr.JaroWinkler(folded, slug.ASCII(c), false)
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if bestScore < v.threshold {
		return ""
	}

	return best
}

func driverGaps(driverSlug string, rec *models.DriverRecord) *DriverMissingFields {
	gaps := DriverMissingFields{Slug: driverSlug, Missing: []string{}, SeasonsMissing: []SeasonMissing{}}

	if rec == nil {
		gaps.Missing = append(gaps.Missing, "allTime", "bySeason")
		return &gaps
	}

	if rec.AllTime == nil {
		gaps.Missing = append(gaps.Missing, "allTime")
	}

	if rec.BySeason == nil {
		gaps.Missing = append(gaps.Missing, "bySeason")
	}

	seasons := make([]string, 0, len(rec.BySeason))
	for k := range rec.BySeason {
		seasons = append(seasons, k)
	}

	sort.Strings(seasons)

	for _, season := range seasons {
		var missing []string

		s := rec.BySeason[season]
		if s == nil || s.Points == nil {
			missing = append(missing, "points")
		}

		if s == nil || s.Team == nil {
			missing = append(missing, "team")
		}

		if len(missing) > 0 {
			gaps.SeasonsMissing = append(gaps.SeasonsMissing, SeasonMissing{Season: season, Missing: missing})
		}
	}

	if len(gaps.Missing) == 0 && len(gaps.SeasonsMissing) == 0 {
		return nil
	}

	return &gaps
}
