package ergast

// rows counts the entries a reply's total refers to: standings rows,
// result and qualifying rows, or drivers.
func (m *MRData) rows() int {
	n := 0

	if m.StandingsTable != nil {
		for _, list := range m.StandingsTable.StandingsLists {
			n += len(list.DriverStandings) + len(list.ConstructorStandings)
		}
	}

	if m.RaceTable != nil {
		for _, race := range m.RaceTable.Races {
			n += len(race.Results) + len(race.QualifyingResults)
		}
	}

	if m.DriverTable != nil {
		n += len(m.DriverTable.Drivers)
	}

	return n
}

// appendPage adds the rows of a later page. A race or standings list split
// across pages is joined by round.
func (m *MRData) appendPage(page MRData) {
	if page.StandingsTable != nil {
		if m.StandingsTable == nil {
			m.StandingsTable = &StandingsTable{Season: page.StandingsTable.Season}
		}

		for _, list := range page.StandingsTable.StandingsLists {
			m.StandingsTable.addList(list)
		}
	}

	if page.RaceTable != nil {
		if m.RaceTable == nil {
			m.RaceTable = &RaceTable{Season: page.RaceTable.Season}
		}

		for _, race := range page.RaceTable.Races {
			m.RaceTable.addRace(race)
		}
	}

	if page.DriverTable != nil {
		if m.DriverTable == nil {
			m.DriverTable = &DriverTable{Season: page.DriverTable.Season}
		}

		m.DriverTable.Drivers = append(m.DriverTable.Drivers, page.DriverTable.Drivers...)
	}
}

func (t *StandingsTable) addList(list StandingsList) {
	for i := range t.StandingsLists {
		have := &t.StandingsLists[i]
		if have.Round != list.Round {
			continue
		}

		have.DriverStandings = append(have.DriverStandings, list.DriverStandings...)
		have.ConstructorStandings = append(have.ConstructorStandings, list.ConstructorStandings...)

		return
	}

	t.StandingsLists = append(t.StandingsLists, list)
}

func (t *RaceTable) addRace(race Race) {
	for i := range t.Races {
		have := &t.Races[i]
		if have.Round != race.Round {
			continue
		}

		have.Results = append(have.Results, race.Results...)
		have.QualifyingResults = append(have.QualifyingResults, race.QualifyingResults...)

		return
	}

	t.Races = append(t.Races, race)
}
