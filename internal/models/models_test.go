package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints_JSONNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"integer", `25`, `25`},
		{"integral float", `25.0`, `25`},
		{"fraction", `12.5`, `12.5`},
		{"quoted", `"18"`, `18`},
		{"quoted fraction", `"0.5"`, `0.5`},
		{"null", `null`, `0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Points
			require.NoError(t, json.Unmarshal([]byte(tt.in), &p))

			out, err := json.Marshal(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestPoints_RejectsGarbage(t *testing.T) {
	var p Points
	require.Error(t, json.Unmarshal([]byte(`"lots"`), &p))
}

func TestPoints_AddKeepsFractions(t *testing.T) {
	sum := MustPoints("12.5").Add(MustPoints("12.5"))

	assert.True(t, sum.Equal(NewPoints(25)))
	assert.Equal(t, "25", sum.String())
	assert.Equal(t, "0.5", MustPoints("0.25").Add(MustPoints("0.25")).String())
}

func TestDriverSeason_AbsentVersusZero(t *testing.T) {
	var s DriverSeason
	require.NoError(t, json.Unmarshal([]byte(`{"team":"Ferrari","wins":0}`), &s))

	assert.Equal(t, "Ferrari", StringValue(s.Team))
	require.NotNil(t, s.Wins)
	assert.Equal(t, 0, *s.Wins)
	assert.Nil(t, s.Podiums)
	assert.Nil(t, s.Points)
}

func TestStatsDocument_CloneIsIndependent(t *testing.T) {
	doc := NewStatsDocument([]int{2024})
	doc.Driver("max-verstappen").BySeason["2024"] = &DriverSeason{
		Team:   StringPtr("Red Bull"),
		Points: PointsPtr(NewPoints(437)),
		Wins:   IntPtr(9),
	}

	clone := doc.Clone()
	*clone.DriverStats["max-verstappen"].BySeason["2024"].Wins = 1
	clone.Driver("lando-norris")

	assert.Equal(t, 9, *doc.DriverStats["max-verstappen"].BySeason["2024"].Wins)
	assert.NotContains(t, doc.DriverStats, "lando-norris")
	assert.Equal(t, "437", clone.DriverStats["max-verstappen"].BySeason["2024"].Points.String())
}

func TestDriverRecord_RecomputeAllTime(t *testing.T) {
	rec := &DriverRecord{
		BySeason: map[string]*DriverSeason{
			"2023": {Points: PointsPtr(MustPoints("10.5")), Wins: IntPtr(1), Podiums: IntPtr(2)},
			"2024": {Points: PointsPtr(NewPoints(20)), Poles: IntPtr(3)},
			"2025": nil,
		},
		AllTime: &DriverAllTime{Wins: 99, Championships: IntPtr(2)},
	}

	rec.RecomputeAllTime()

	assert.Equal(t, "30.5", rec.AllTime.Points.String())
	assert.Equal(t, 1, rec.AllTime.Wins)
	assert.Equal(t, 2, rec.AllTime.Podiums)
	assert.Equal(t, 3, rec.AllTime.Poles)
	require.NotNil(t, rec.AllTime.Championships)
	assert.Equal(t, 2, *rec.AllTime.Championships)
}

func TestStatsDocument_AddSeasonSorted(t *testing.T) {
	doc := NewStatsDocument([]int{2024, 2022})
	doc.AddSeason(2023)
	doc.AddSeason(2024)

	assert.Equal(t, []int{2022, 2023, 2024}, doc.Seasons)
}

func TestRoster_EntriesFirstTeamWins(t *testing.T) {
	r := Roster{Teams: []RosterTeam{
		{Slug: "ferrari", Name: "Ferrari", Drivers: []RosterDriver{{Slug: "charles-leclerc"}}},
		{Slug: "haas", Name: "Haas", Drivers: []RosterDriver{{Slug: "charles-leclerc"}, {Slug: "oliver-bearman"}}},
	}}

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ferrari", entries[0].Team.Slug)
	assert.Equal(t, "oliver-bearman", entries[1].Driver.Slug)
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")

	fe := &FetchError{Season: 2024, Endpoint: "results", Attempts: 3, StatusCode: 503, Err: cause}
	assert.ErrorIs(t, fe, ErrFetch)
	assert.ErrorIs(t, fe, cause)
	assert.Contains(t, fe.Error(), "2024/results")
	assert.Contains(t, fe.Error(), "status 503")

	pe := &ParseError{Path: "stats.json", Line: 3, Column: 7, Err: cause}
	assert.ErrorIs(t, pe, ErrParse)
	assert.Equal(t, "stats.json:3:7: connection reset", pe.Error())

	var gap error = &SchemaGapError{Path: "stats.json", Field: "driverStats"}
	assert.ErrorIs(t, gap, ErrSchemaGap)
}

func TestNewParseError_LocatesSyntaxError(t *testing.T) {
	data := []byte("{\n  \"a\": x\n}")

	var v map[string]any
	err := json.Unmarshal(data, &v)
	require.Error(t, err)

	pe := NewParseError("doc.json", data, err)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 8, pe.Column)
	assert.ErrorIs(t, pe, ErrParse)
}

func TestExtra_RoundTrip(t *testing.T) {
	in := `{"team":"Ferrari","points":null,"wins":2,"podiums":null,"poles":null,"fastestLaps":null,"position":null,"starts":24,"notes":{"dnf":["Monaco"]}}`

	var s DriverSeason
	require.NoError(t, json.Unmarshal([]byte(in), &s))

	assert.Equal(t, 2, IntValue(s.Wins))
	require.Len(t, s.Extra, 2)
	assert.JSONEq(t, `24`, string(s.Extra["starts"]))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	// named fields first, unknown members after in key order
	assert.Equal(t, `{"team":"Ferrari","points":null,"wins":2,"podiums":null,"poles":null,"fastestLaps":null,"position":null,"notes":{"dnf":["Monaco"]},"starts":24}`, string(out))
}

func TestExtra_AbsentWhenNothingUnknown(t *testing.T) {
	var a TeamAllTime
	require.NoError(t, json.Unmarshal([]byte(`{"points":12.5,"wins":0}`), &a))
	assert.Nil(t, a.Extra)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `{"points":12.5,"wins":0}`, string(out))
}

func TestExtra_SurvivesCloneAndRecompute(t *testing.T) {
	doc := NewStatsDocument([]int{2025})
	rec := doc.Driver("lando-norris")
	rec.BySeason["2025"] = ZeroDriverSeason("McLaren")
	rec.AllTime = &DriverAllTime{Championships: IntPtr(1), Extra: Extra{"starts": json.RawMessage(`120`)}}
	rec.Extra = Extra{"feeder": json.RawMessage(`{"f2":{}}`)}
	doc.Extra = Extra{"updatedAt": json.RawMessage(`"2026-03-01"`)}

	out := doc.Clone()
	out.Driver("lando-norris").RecomputeAllTime()

	got := out.DriverStats["lando-norris"]
	assert.JSONEq(t, `{"f2":{}}`, string(got.Extra["feeder"]))
	assert.JSONEq(t, `120`, string(got.AllTime.Extra["starts"]))
	assert.Equal(t, 1, *got.AllTime.Championships)
	assert.JSONEq(t, `"2026-03-01"`, string(out.Extra["updatedAt"]))
}
