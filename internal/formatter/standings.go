package formatter

import (
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"f1stats/internal/models"
)

// StandingRow is one driver's line in a season table.
type StandingRow struct {
	Slug   string
	Season *models.DriverSeason
}

// Standings returns the drivers with a tally for season, best first: points,
// then wins, then slug.
func Standings(doc *models.StatsDocument, season int) []StandingRow {
	key := models.SeasonKey(season)

	var rows []StandingRow

	for _, s := range doc.DriverSlugs() {
		if ds := doc.DriverStats[s].BySeason[key]; ds != nil {
			rows = append(rows, StandingRow{Slug: s, Season: ds})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Season, rows[j].Season

		pa, pb := pointsOf(a), pointsOf(b)
		if !pa.Equal(pb) {
			return pa.GreaterThan(pb.Decimal)
		}

		if wa, wb := models.IntValue(a.Wins), models.IntValue(b.Wins); wa != wb {
			return wa > wb
		}

		return rows[i].Slug < rows[j].Slug
	})

	return rows
}

// StandingsTable renders a season's driver tallies as a terminal table.
func StandingsTable(doc *models.StatsDocument, season int) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Season " + strconv.Itoa(season))
	t.AppendHeader(table.Row{"#", "Driver", "Team", "Points", "Wins", "Podiums", "Poles", "Fastest laps", "Position"})

	for i, r := range Standings(doc, season) {
		s := r.Season
		t.AppendRow(table.Row{
			i + 1,
			r.Slug,
			models.StringValue(s.Team),
			pointsOf(s).String(),
			models.IntValue(s.Wins),
			models.IntValue(s.Podiums),
			models.IntValue(s.Poles),
			models.IntValue(s.FastestLaps),
			optionalInt(s.Position),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Points", Align: text.AlignRight},
		{Name: "Position", Align: text.AlignRight},
	})

	return t.Render()
}

func pointsOf(s *models.DriverSeason) models.Points {
	if s.Points == nil {
		return models.Points{}
	}

	return *s.Points
}

func optionalInt(p *int) string {
	if p == nil {
		return "-"
	}

	return strconv.Itoa(*p)
}
