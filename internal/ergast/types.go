package ergast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is an upstream scalar. The API sends numbers as strings, some mirrors
// send bare numbers; both decode to their textual form and null decodes to "".
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*t = Text(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*t = Text(data)
	default:
		return fmt.Errorf("unexpected scalar %s", data)
	}

	return nil
}

// Int parses t as a plain integer. Anything else (empty, "R", "D", "1.5")
// reports ok=false.
func (t Text) Int() (int, bool) {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return 0, false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Response is the envelope of every API reply.
type Response struct {
	MRData MRData `json:"MRData"`
}

// MRData carries one of the tables below depending on the endpoint.
type MRData struct {
	Limit          Text            `json:"limit"`
	Offset         Text            `json:"offset"`
	Total          Text            `json:"total"`
	StandingsTable *StandingsTable `json:"StandingsTable"`
	RaceTable      *RaceTable      `json:"RaceTable"`
	DriverTable    *DriverTable    `json:"DriverTable"`
}

// StandingsTable holds one list per round requested; season queries return the final one.
type StandingsTable struct {
	Season         Text            `json:"season"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

// StandingsList is a standings snapshot after a round.
type StandingsList struct {
	Season               Text                  `json:"season"`
	Round                Text                  `json:"round"`
	DriverStandings      []DriverStanding      `json:"DriverStandings"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings"`
}

// DriverStanding is one row of the drivers' championship.
type DriverStanding struct {
	Position     Text          `json:"position"`
	PositionText Text          `json:"positionText"`
	Points       Text          `json:"points"`
	Wins         Text          `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

// ConstructorStanding is one row of the constructors' championship.
type ConstructorStanding struct {
	Position     Text        `json:"position"`
	PositionText Text        `json:"positionText"`
	Points       Text        `json:"points"`
	Wins         Text        `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}

// Driver identifies a driver.
type Driver struct {
	DriverID        Text `json:"driverId"`
	PermanentNumber Text `json:"permanentNumber"`
	Code            Text `json:"code"`
	GivenName       Text `json:"givenName"`
	FamilyName      Text `json:"familyName"`
	DateOfBirth     Text `json:"dateOfBirth"`
	Nationality     Text `json:"nationality"`
}

// FullName is "given family" with blanks collapsed.
func (d Driver) FullName() string {
	return strings.Join(strings.Fields(string(d.GivenName)+" "+string(d.FamilyName)), " ")
}

// Constructor identifies a team.
type Constructor struct {
	ConstructorID Text `json:"constructorId"`
	Name          Text `json:"name"`
	Nationality   Text `json:"nationality"`
}

// RaceTable lists races with either results or qualifying attached.
type RaceTable struct {
	Season Text   `json:"season"`
	Races  []Race `json:"Races"`
}

// Race is one grand prix.
type Race struct {
	Season            Text               `json:"season"`
	Round             Text               `json:"round"`
	RaceName          Text               `json:"raceName"`
	Date              Text               `json:"date"`
	Results           []Result           `json:"Results"`
	QualifyingResults []QualifyingResult `json:"QualifyingResults"`
}

// Result is one classified (or not) finisher.
type Result struct {
	Number       Text        `json:"number"`
	Position     Text        `json:"position"`
	PositionText Text        `json:"positionText"`
	Points       Text        `json:"points"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         Text        `json:"grid"`
	Laps         Text        `json:"laps"`
	Status       Text        `json:"status"`
	FastestLap   *FastestLap `json:"FastestLap"`
}

// FastestLap ranks a driver's best lap within the race.
type FastestLap struct {
	Rank Text `json:"rank"`
	Lap  Text `json:"lap"`
}

// QualifyingResult is one qualifying classification row.
type QualifyingResult struct {
	Number      Text        `json:"number"`
	Position    Text        `json:"position"`
	Driver      Driver      `json:"Driver"`
	Constructor Constructor `json:"Constructor"`
	Q1          Text        `json:"Q1"`
	Q2          Text        `json:"Q2"`
	Q3          Text        `json:"Q3"`
}

// DriverTable lists the drivers entered in a season.
type DriverTable struct {
	Season  Text     `json:"season"`
	Drivers []Driver `json:"Drivers"`
}
