// Package career derives career facts that the race results alone do not
// carry: championship titles, feeder-series history and externally sourced
// career summaries.
package career

import (
	"encoding/json"
	"strings"
	"unicode"

	"f1stats/internal/models"
)

const topSeries = "formula one"

// ComputeChampionships counts, for every driver, the careerSummary rows that
// record a Formula One title and stores the count in allTime.championships.
// Drivers without a summary get zero. It returns a new document and the slugs
// whose count changed; the input is not modified.
func ComputeChampionships(doc *models.StatsDocument) (*models.StatsDocument, []string) {
	out := doc.Clone()

	var changed []string

	for _, driverSlug := range out.DriverSlugs() {
		rec := out.Driver(driverSlug)

		titles := CountTitles(summaryOf(rec))

		if rec.AllTime == nil {
			rec.RecomputeAllTime()
		}

		if rec.AllTime.Championships != nil && *rec.AllTime.Championships == titles {
			continue
		}

		rec.AllTime.Championships = models.IntPtr(titles)
		changed = append(changed, driverSlug)
	}

	return out, changed
}

// CountTitles counts rows in the top series finished in first place.
func CountTitles(rows []models.CareerRow) int {
	n := 0

	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Series), topSeries) {
			continue
		}

		if IsChampion(row.Position) {
			n++
		}
	}

	return n
}

// IsChampion reports whether a final classification reads as first place:
// "1", "1st", "1st (10 wins)". "10th" and "11" are not.
func IsChampion(position string) bool {
	p := strings.TrimSpace(strings.ToLower(position))

	end := strings.IndexFunc(p, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(p)
	}

	return p[:end] == "1"
}

// summaryOf returns the driver's career summary, falling back to a
// careerSummary array inside careerFromWiki.
func summaryOf(rec *models.DriverRecord) []models.CareerRow {
	if len(rec.CareerSummary) > 0 {
		return rec.CareerSummary
	}

	if len(rec.CareerFromWiki) == 0 {
		return nil
	}

	var wiki struct {
		CareerSummary []models.CareerRow `json:"careerSummary"`
	}

	if err := json.Unmarshal(rec.CareerFromWiki, &wiki); err != nil {
		return nil
	}

	return wiki.CareerSummary
}
