package formatter

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1stats/internal/models"
	"f1stats/internal/validator"
)

func TestAlignTables(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |
`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |
`,
		},
		{
			name: "Mixed content",
			input: `
# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.
`,
			expected: `
# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.
`,
		},
		{
			name: "Accented and wide names",
			input: `
| Driver | Team |
| --- | --- |
| sergio-pérez | Red Bull |
| 角田裕毅 | RB |
`,
			expected: `
| Driver       | Team     |
| ------------ | -------- |
| sergio-pérez | Red Bull |
| 角田裕毅     | RB       |
`,
		},
		{
			name: "Escaped pipe stays in its cell",
			input: `
| A | B |
| --- | --- |
| x \| y | z |
`,
			expected: `
| A      | B   |
| ------ | --- |
| x \| y | z   |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignTables(strings.TrimSpace(tt.input))

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("AlignTables() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestReportMarkdown_Golden(t *testing.T) {
	report := &validator.Report{
		MissingInStats: []validator.MissingInStats{
			{Slug: "oscar-piastri", Name: "Oscar Piastri", Team: "mclaren"},
		},
		MissingInEntries: []validator.MissingInEntries{
			{Slug: "sergio-pérez", Suggestion: "sergio-perez"},
		},
		DriversWithMissingFields: []validator.DriverMissingFields{
			{
				Slug:    "valtteri-bottas",
				Missing: []string{"allTime"},
				SeasonsMissing: []validator.SeasonMissing{
					{Season: "2025", Missing: []string{"points", "team"}},
				},
			},
		},
		Summary: validator.Summary{
			EntriesDrivers:           4,
			StatsDrivers:             4,
			MissingInStats:           1,
			MissingInEntries:         1,
			DriversWithMissingFields: 1,
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", []byte(ReportMarkdown(report)))
}

func TestReportMarkdown_Clean(t *testing.T) {
	out := ReportMarkdown(&validator.Report{Summary: validator.Summary{EntriesDrivers: 2, StatsDrivers: 2}})

	assert.Contains(t, out, "No discrepancies.")
	assert.NotContains(t, out, "## Missing")
}

func standingsDoc() *models.StatsDocument {
	doc := models.NewStatsDocument([]int{2024})

	add := func(driverSlug, team, points string, wins int) {
		s := models.ZeroDriverSeason(team)
		s.Points = models.PointsPtr(models.MustPoints(points))
		s.Wins = models.IntPtr(wins)
		doc.Driver(driverSlug).BySeason["2024"] = s
	}

	add("lando-norris", "McLaren", "374", 4)
	add("max-verstappen", "Red Bull", "437", 9)
	add("charles-leclerc", "Ferrari", "356", 3)
	add("carlos-sainz", "Ferrari", "290", 2)
	add("oscar-piastri", "McLaren", "290", 2)
	doc.Driver("nico-rosberg")

	return doc
}

func TestStandings_Order(t *testing.T) {
	rows := Standings(standingsDoc(), 2024)

	var got []string
	for _, r := range rows {
		got = append(got, r.Slug)
	}

	assert.Equal(t, []string{
		"max-verstappen",
		"lando-norris",
		"charles-leclerc",
		"carlos-sainz",
		"oscar-piastri",
	}, got)
}

func TestStandingsTable(t *testing.T) {
	out := StandingsTable(standingsDoc(), 2024)

	require.Contains(t, out, "Season 2024")
	assert.Contains(t, out, "max-verstappen")
	assert.NotContains(t, out, "nico-rosberg")
	assert.Less(t, strings.Index(out, "max-verstappen"), strings.Index(out, "lando-norris"))
	assert.Contains(t, out, "437")
}

func TestStandingsTable_UnknownSeason(t *testing.T) {
	out := StandingsTable(standingsDoc(), 1999)

	assert.NotContains(t, out, "max-verstappen")
	assert.Empty(t, Standings(standingsDoc(), 1999))
}
