package ergast

import (
	"encoding/json"

	"f1stats/internal/models"
)

func decode(source string, body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, models.NewParseError(source, body, err)
	}

	return &resp, nil
}

func lastStandings(resp *Response) *StandingsList {
	if resp.MRData.StandingsTable == nil {
		return nil
	}

	lists := resp.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 {
		return nil
	}

	return &lists[len(lists)-1]
}

// DecodeDriverStandings returns the final drivers' standings in body.
func DecodeDriverStandings(source string, body []byte) ([]DriverStanding, error) {
	resp, err := decode(source, body)
	if err != nil {
		return nil, err
	}

	list := lastStandings(resp)
	if list == nil {
		return nil, nil
	}

	return list.DriverStandings, nil
}

// DecodeConstructorStandings returns the final constructors' standings in body.
func DecodeConstructorStandings(source string, body []byte) ([]ConstructorStanding, error) {
	resp, err := decode(source, body)
	if err != nil {
		return nil, err
	}

	list := lastStandings(resp)
	if list == nil {
		return nil, nil
	}

	return list.ConstructorStandings, nil
}

// DecodeRaces returns the races of a results or qualifying reply.
func DecodeRaces(source string, body []byte) ([]Race, error) {
	resp, err := decode(source, body)
	if err != nil {
		return nil, err
	}

	if resp.MRData.RaceTable == nil {
		return nil, nil
	}

	return resp.MRData.RaceTable.Races, nil
}

// DecodeDrivers returns the driver table of a drivers reply.
func DecodeDrivers(source string, body []byte) ([]Driver, error) {
	resp, err := decode(source, body)
	if err != nil {
		return nil, err
	}

	if resp.MRData.DriverTable == nil {
		return nil, nil
	}

	return resp.MRData.DriverTable.Drivers, nil
}
