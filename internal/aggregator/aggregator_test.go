package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1stats/internal/config"
	"f1stats/internal/ergast"
	"f1stats/internal/models"
)

func driver(id, given, family string) ergast.Driver {
	return ergast.Driver{DriverID: ergast.Text(id), GivenName: ergast.Text(given), FamilyName: ergast.Text(family)}
}

func ctor(id, name string) ergast.Constructor {
	return ergast.Constructor{ConstructorID: ergast.Text(id), Name: ergast.Text(name)}
}

func result(pos, points string, d ergast.Driver, c ergast.Constructor) ergast.Result {
	return ergast.Result{Position: ergast.Text(pos), Points: ergast.Text(points), Driver: d, Constructor: c}
}

var (
	driverA = driver("alpha", "Anna", "Alpha")
	driverB = driver("bravo", "Ben", "Bravo")
	driverC = driver("charlie", "Cara", "Charlie")
	teamX   = ctor("x_team", "Team X")
	teamY   = ctor("y_team", "Team Y")
)

func TestAggregate_ThreeResults(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2024,
		Races: []ergast.Race{{Round: "1", Results: []ergast.Result{
			result("1", "25", driverA, teamX),
			result("2", "18", driverB, teamX),
			result("4", "0", driverC, teamY),
		}}},
	}

	tally := New(Options{}, nil).Aggregate(data)
	require.Len(t, tally.Drivers, 3)

	a := tally.Drivers["anna-alpha"]
	b := tally.Drivers["ben-bravo"]
	c := tally.Drivers["cara-charlie"]

	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)

	assert.Equal(t, 1, a.Wins)
	assert.Equal(t, 1, a.Podiums)
	assert.Equal(t, "25", a.Points.String())

	assert.Equal(t, 0, b.Wins)
	assert.Equal(t, 1, b.Podiums)
	assert.Equal(t, "18", b.Points.String())

	assert.Equal(t, 0, c.Wins)
	assert.Equal(t, 0, c.Podiums)
	assert.True(t, c.Points.IsZero())

	assert.Equal(t, 1, tally.Teams["team-x"].Wins)
	assert.Equal(t, "43", tally.Teams["team-x"].Points.String())
	assert.Empty(t, tally.Gaps)
}

func TestAggregate_FirstTeamNameWins(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2024,
		Races: []ergast.Race{
			{Round: "1", Results: []ergast.Result{result("5", "10", driverA, teamX)}},
			{Round: "2", Results: []ergast.Result{result("3", "15", driverA, teamY)}},
		},
	}

	tally := New(Options{}, nil).Aggregate(data)

	assert.Equal(t, "Team X", tally.Drivers["anna-alpha"].Team)
}

func TestAggregate_PositionSources(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2024,
		Races: []ergast.Race{
			{Round: "1", Results: []ergast.Result{result("1", "25", driverA, teamX)}},
			{Round: "2", Results: []ergast.Result{result("7", "6", driverA, teamX)}},
		},
		DriverStandings: []ergast.DriverStanding{{Position: "2", Points: "31", Driver: driverA}},
		ConstructorStandings: []ergast.ConstructorStanding{
			{Position: "4", Points: "31", Constructor: teamX},
		},
	}

	fromResults := New(Options{PositionSource: config.PositionFromResults}, nil).Aggregate(data)
	require.NotNil(t, fromResults.Drivers["anna-alpha"].Position)
	assert.Equal(t, 7, *fromResults.Drivers["anna-alpha"].Position)

	fromStandings := New(Options{PositionSource: config.PositionFromStandings}, nil).Aggregate(data)
	require.NotNil(t, fromStandings.Drivers["anna-alpha"].Position)
	assert.Equal(t, 2, *fromStandings.Drivers["anna-alpha"].Position)

	for _, tally := range []*SeasonTally{fromResults, fromStandings} {
		require.NotNil(t, tally.Teams["team-x"].Position)
		assert.Equal(t, 4, *tally.Teams["team-x"].Position)
	}
}

func TestAggregate_MissingPositionIsNullAndNoWin(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2024,
		Races: []ergast.Race{
			{Round: "1", Results: []ergast.Result{result("1", "25", driverA, teamX)}},
			{Round: "2", Results: []ergast.Result{{Position: "", Driver: driverA, Constructor: teamX}}},
		},
	}

	tally := New(Options{}, nil).Aggregate(data)
	a := tally.Drivers["anna-alpha"]

	assert.Nil(t, a.Position)
	assert.Equal(t, 1, a.Wins)
	assert.Equal(t, "25", a.Points.String())
	// missing position and missing points in round 2
	assert.Len(t, tally.Gaps, 2)
}

func TestAggregate_FractionalPoints(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2021,
		Races: []ergast.Race{
			{Round: "12", Results: []ergast.Result{result("1", "12.5", driverA, teamX)}},
			{Round: "13", Results: []ergast.Result{result("1", "12.5", driverA, teamX)}},
			{Round: "14", Results: []ergast.Result{result("9", "2.5", driverB, teamY)}},
		},
	}

	tally := New(Options{}, nil).Aggregate(data)

	season := tally.Drivers["anna-alpha"].DriverSeason()
	assert.Equal(t, "25", season.Points.String())
	assert.Equal(t, "2.5", tally.Drivers["ben-bravo"].Points.String())
}

func TestAggregate_PolesAndFastestLaps(t *testing.T) {
	fast := result("2", "19", driverB, teamY)
	fast.FastestLap = &ergast.FastestLap{Rank: "1"}

	slow := result("1", "25", driverA, teamX)
	slow.FastestLap = &ergast.FastestLap{Rank: "3"}

	data := &ergast.SeasonData{
		Season: 2024,
		Races:  []ergast.Race{{Round: "1", Results: []ergast.Result{slow, fast}}},
		Qualifying: []ergast.Race{{Round: "1", QualifyingResults: []ergast.QualifyingResult{
			{Position: "1", Driver: driverB},
			{Position: "2", Driver: driverA},
			{Position: "3", Driver: driverC},
		}}},
	}

	tally := New(Options{}, nil).Aggregate(data)

	assert.Equal(t, 1, tally.Drivers["ben-bravo"].Poles)
	assert.Equal(t, 1, tally.Drivers["ben-bravo"].FastestLaps)
	assert.Equal(t, 1, tally.Teams["team-y"].FastestLaps)
	assert.Equal(t, 0, tally.Drivers["anna-alpha"].FastestLaps)
	assert.Equal(t, 0, tally.Drivers["anna-alpha"].Poles)
	// qualifying-only driver still gets a tally
	require.Contains(t, tally.Drivers, "cara-charlie")
	assert.Empty(t, tally.Drivers["cara-charlie"].Team)
}

func TestAggregate_IdentityKeys(t *testing.T) {
	perez := driver("perez", "Sergio", "Pérez")
	data := &ergast.SeasonData{
		Season: 2024,
		Races: []ergast.Race{{Round: "1", Results: []ergast.Result{
			result("2", "18", perez, ctor("red_bull", "Red Bull")),
		}}},
	}

	byName := New(Options{IdentityKey: config.IdentityByName}, nil).Aggregate(data)
	assert.Contains(t, byName.Drivers, "sergio-pérez")
	assert.Contains(t, byName.Teams, "red-bull")

	folded := New(Options{IdentityKey: config.IdentityByName, FoldAccents: true}, nil).Aggregate(data)
	assert.Contains(t, folded.Drivers, "sergio-perez")

	byID := New(Options{IdentityKey: config.IdentityByID}, nil).Aggregate(data)
	assert.Contains(t, byID.Drivers, "perez")
	assert.Contains(t, byID.Teams, "red-bull")
}

func TestAggregate_StandingsFillDriversWithoutResults(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2024,
		DriverStandings: []ergast.DriverStanding{
			{Position: "1", Points: "437", Wins: "9", Driver: driverA, Constructors: []ergast.Constructor{teamX}},
		},
		ConstructorStandings: []ergast.ConstructorStanding{
			{Position: "1", Points: "589", Wins: "9", Constructor: teamX},
		},
		Drivers: []ergast.Driver{driverA, driverB},
	}

	tally := New(Options{}, nil).Aggregate(data)

	a := tally.Drivers["anna-alpha"]
	assert.Equal(t, "437", a.Points.String())
	assert.Equal(t, 9, a.Wins)
	assert.Equal(t, "Team X", a.Team)

	assert.Equal(t, "589", tally.Teams["team-x"].Points.String())
	// entered but never classified
	assert.Contains(t, tally.Drivers, "ben-bravo")
}

func TestAggregate_DriverTableSuppliesNames(t *testing.T) {
	bare := ergast.Driver{DriverID: "alpha"}
	data := &ergast.SeasonData{
		Season:  2024,
		Drivers: []ergast.Driver{driverA},
		Races:   []ergast.Race{{Round: "1", Results: []ergast.Result{result("1", "25", bare, teamX)}}},
	}

	tally := New(Options{}, nil).Aggregate(data)

	require.Contains(t, tally.Drivers, "anna-alpha")
	assert.Equal(t, 1, tally.Drivers["anna-alpha"].Wins)
}

func TestAggregate_NamelessDriverIsGap(t *testing.T) {
	data := &ergast.SeasonData{
		Season: 2024,
		Races:  []ergast.Race{{Round: "1", Results: []ergast.Result{result("1", "25", ergast.Driver{}, teamX)}}},
	}

	tally := New(Options{}, nil).Aggregate(data)

	assert.Empty(t, tally.Drivers)
	require.Len(t, tally.Gaps, 1)
	assert.Equal(t, "Driver", tally.Gaps[0].Field)
	assert.ErrorIs(t, tally.Gaps[0], models.ErrSchemaGap)
}

func TestBuild_MergesSeasonsAndAllTime(t *testing.T) {
	collected := []*ergast.SeasonData{
		{Season: 2023, Races: []ergast.Race{{Round: "1", Results: []ergast.Result{result("1", "25", driverA, teamX)}}}},
		{Season: 2024, Races: []ergast.Race{{Round: "1", Results: []ergast.Result{result("3", "15.5", driverA, teamX)}}}},
	}

	doc := New(Options{}, nil).Build([]int{2024, 2023}, collected)

	assert.Equal(t, []int{2023, 2024}, doc.Seasons)

	rec := doc.DriverStats["anna-alpha"]
	require.NotNil(t, rec)
	require.Contains(t, rec.BySeason, "2023")
	require.Contains(t, rec.BySeason, "2024")
	assert.Equal(t, "40.5", rec.AllTime.Points.String())
	assert.Equal(t, 1, rec.AllTime.Wins)
	assert.Equal(t, 2, rec.AllTime.Podiums)

	team := doc.TeamStats["team-x"]
	require.NotNil(t, team)
	assert.Equal(t, "40.5", team.AllTime.Points.String())
	assert.Nil(t, team.BySeason["2024"].Position)
}

func TestMerge_ReplacesSeasonOnly(t *testing.T) {
	doc := models.NewStatsDocument([]int{2023})
	doc.Driver("anna-alpha").BySeason["2023"] = models.ZeroDriverSeason("Old Team")
	doc.Driver("anna-alpha").AllTime = &models.DriverAllTime{Championships: models.IntPtr(1)}

	Merge(doc, &SeasonTally{
		Season:  2024,
		Drivers: map[string]*DriverTally{"anna-alpha": {Slug: "anna-alpha", Team: "Team X", Points: models.NewPoints(10)}},
		Teams:   map[string]*TeamTally{},
	})

	rec := doc.DriverStats["anna-alpha"]
	assert.Equal(t, "Old Team", models.StringValue(rec.BySeason["2023"].Team))
	assert.Equal(t, "Team X", models.StringValue(rec.BySeason["2024"].Team))
	assert.Equal(t, "10", rec.AllTime.Points.String())
	require.NotNil(t, rec.AllTime.Championships)
	assert.Equal(t, 1, *rec.AllTime.Championships)
	assert.Equal(t, []int{2023, 2024}, doc.Seasons)
}

func TestMerge_KeepsWhatTheTallyLacks(t *testing.T) {
	doc := models.NewStatsDocument([]int{2024})
	prev := models.ZeroDriverSeason("Team X")
	prev.Position = models.IntPtr(4)
	prev.Extra = models.Extra{"starts": []byte(`24`)}
	doc.Driver("anna-alpha").BySeason["2024"] = prev

	Merge(doc, &SeasonTally{
		Season:  2024,
		Drivers: map[string]*DriverTally{"anna-alpha": {Slug: "anna-alpha", Points: models.NewPoints(30), Wins: 1}},
		Teams:   map[string]*TeamTally{},
	})

	got := doc.DriverStats["anna-alpha"].BySeason["2024"]
	assert.Equal(t, "Team X", models.StringValue(got.Team))
	require.NotNil(t, got.Position)
	assert.Equal(t, 4, *got.Position)
	assert.Equal(t, 1, models.IntValue(got.Wins))
	assert.JSONEq(t, `24`, string(got.Extra["starts"]))
}

func TestBuildOnto_KeepsExistingRecords(t *testing.T) {
	base := models.NewStatsDocument([]int{2023})
	rec := base.Driver("anna-alpha")
	rec.BySeason["2023"] = models.ZeroDriverSeason("Team X")
	rec.CareerSummary = []models.CareerRow{{Series: "Formula One", Position: "1st"}}
	rec.AllTime = &models.DriverAllTime{Championships: models.IntPtr(1)}
	rec.Extra = models.Extra{"feeder": []byte(`{"f2":{"allTime":{"wins":3}}}`)}
	base.Driver("retired-driver").BySeason["2023"] = models.ZeroDriverSeason("Team Y")

	collected := []*ergast.SeasonData{
		{Season: 2024, Races: []ergast.Race{{Round: "1", Results: []ergast.Result{result("1", "25", driverA, teamX)}}}},
	}

	doc := New(Options{}, nil).BuildOnto(base, []int{2024}, collected)

	assert.Equal(t, []int{2023, 2024}, doc.Seasons)
	assert.Contains(t, doc.DriverStats, "retired-driver")

	got := doc.DriverStats["anna-alpha"]
	require.Contains(t, got.BySeason, "2023")
	require.Contains(t, got.BySeason, "2024")
	assert.Len(t, got.CareerSummary, 1)
	assert.Equal(t, 1, *got.AllTime.Championships)
	assert.Equal(t, "25", got.AllTime.Points.String())
	assert.Contains(t, got.Extra, "feeder")

	assert.Empty(t, base.DriverStats["anna-alpha"].BySeason["2024"], "base must not be modified")
}
