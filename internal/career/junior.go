package career

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"f1stats/internal/logger"
	"f1stats/internal/models"
)

// Year search bounds around a series mention.
const (
	yearWindow = 200
	minYear    = 1990
	maxYear    = 2035
)

var (
	f2Pattern   = regexp.MustCompile(`(?i)\bformula (?:2|two)\b|\bf2\b`)
	f3Pattern   = regexp.MustCompile(`(?i)\bformula (?:3|three)\b|\bf3\b`)
	yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// JuniorResult is one driver's entry in the junior-career file.
type JuniorResult struct {
	WikipediaTitle string `json:"wikipedia_title"`
	WikipediaURL   string `json:"wikipedia_url"`
	Debut          int    `json:"debut"`
	F2Years        []int  `json:"F2_years"`
	F3Years        []int  `json:"F3_years"`
}

// JuniorFetcher looks up feeder-series history for recent debutants.
type JuniorFetcher struct {
	source   PageSource
	minDebut int
	log      *logger.Logger
}

// NewJuniorFetcher creates a fetcher for drivers debuting in minDebut or later.
func NewJuniorFetcher(source PageSource, minDebut int, log *logger.Logger) *JuniorFetcher {
	if log == nil {
		log = logger.Discard()
	}

	return &JuniorFetcher{source: source, minDebut: minDebut, log: log}
}

// Debut returns the first season in which the driver was classified or
// scored, or 0 when there is none.
func Debut(rec *models.DriverRecord) int {
	debut := 0

	for key, s := range rec.BySeason {
		season, err := strconv.Atoi(key)
		if err != nil || s == nil {
			continue
		}

		raced := s.Position != nil || (s.Points != nil && !s.Points.IsZero())
		if raced && (debut == 0 || season < debut) {
			debut = season
		}
	}

	return debut
}

// Targets lists the drivers whose debut is minDebut or later, sorted.
func (f *JuniorFetcher) Targets(doc *models.StatsDocument) map[string]int {
	out := make(map[string]int)

	for _, driverSlug := range doc.DriverSlugs() {
		if debut := Debut(doc.DriverStats[driverSlug]); debut != 0 && debut >= f.minDebut {
			out[driverSlug] = debut
		}
	}

	return out
}

// Run looks up every target and attaches juniorCareer to a copy of doc.
// names maps slugs to display names used as search queries; missing names
// fall back to the slug's words. Lookup failures are logged and skipped.
// A cancelled context stops the run and returns what was found so far.
func (f *JuniorFetcher) Run(ctx context.Context, doc *models.StatsDocument, names map[string]string) (*models.StatsDocument, map[string]JuniorResult, error) {
	out := doc.Clone()
	results := make(map[string]JuniorResult)

	targets := f.Targets(out)
	slugs := make([]string, 0, len(targets))

	for s := range targets {
		slugs = append(slugs, s)
	}

	sort.Strings(slugs)

	f.log.Info("junior career lookup", "targets", len(slugs), "min_debut", f.minDebut)

	for i, driverSlug := range slugs {
		if err := ctx.Err(); err != nil {
			return out, results, err
		}

		query := names[driverSlug]
		if query == "" {
			query = strings.ReplaceAll(driverSlug, "-", " ")
		}

		log := f.log.With("driver", driverSlug, "progress", strconv.Itoa(i+1)+"/"+strconv.Itoa(len(slugs)))

		title, err := f.source.Search(ctx, query)
		if err != nil {
			log.Warn("wiki search failed", "query", query, "error", err)
			continue
		}

		if title == "" {
			log.Warn("no wiki page found", "query", query)
			continue
		}

		text, err := f.source.PageText(ctx, title)
		if err != nil {
			log.Warn("failed to fetch wiki page", "title", title, "error", err)
			continue
		}

		res := JuniorResult{
			WikipediaTitle: title,
			WikipediaURL:   PageURL(title),
			Debut:          targets[driverSlug],
			F2Years:        SeriesYears(text, f2Pattern),
			F3Years:        SeriesYears(text, f3Pattern),
		}

		results[driverSlug] = res
		rec := out.Driver(driverSlug)

		junior := &models.JuniorCareer{
			F2Years:        res.F2Years,
			F3Years:        res.F3Years,
			WikipediaTitle: title,
		}
		if rec.JuniorCareer != nil {
			junior.Extra = rec.JuniorCareer.Extra
		}

		rec.JuniorCareer = junior

		log.Debug("junior career found", "title", title, "f2", res.F2Years, "f3", res.F3Years)
	}

	return out, results, nil
}

// F2Years returns the years mentioned near Formula 2 in text.
func F2Years(text string) []int { return SeriesYears(text, f2Pattern) }

// F3Years returns the years mentioned near Formula 3 in text.
func F3Years(text string) []int { return SeriesYears(text, f3Pattern) }

// SeriesYears collects the plausible years within yearWindow bytes of every
// series match, sorted and unique. Never nil.
func SeriesYears(text string, series *regexp.Regexp) []int {
	found := make(map[int]bool)

	for _, m := range series.FindAllStringIndex(text, -1) {
		start := max(0, m[0]-yearWindow)
		end := min(len(text), m[1]+yearWindow)

		for _, y := range yearPattern.FindAllString(text[start:end], -1) {
			year, _ := strconv.Atoi(y)
			if year >= minYear && year <= maxYear {
				found[year] = true
			}
		}
	}

	years := make([]int, 0, len(found))
	for y := range found {
		years = append(years, y)
	}

	sort.Ints(years)

	return years
}
