package models

// RosterDriver is one confirmed driver in the roster file.
type RosterDriver struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
	Number      int    `json:"number,omitempty"`
}

// RosterTeam is one entrant team and its drivers.
type RosterTeam struct {
	Slug    string         `json:"slug"`
	Name    string         `json:"name"`
	Country string         `json:"country,omitempty"`
	Drivers []RosterDriver `json:"drivers"`
}

// Roster is the authoritative entry list for an upcoming season.
type Roster struct {
	Season int          `json:"season"`
	Teams  []RosterTeam `json:"teams"`
}

// RosterEntry pairs a roster driver with the team it is entered for.
type RosterEntry struct {
	Driver RosterDriver
	Team   RosterTeam
}

// Entries flattens the roster in file order. A driver listed twice keeps the
// first team.
func (r *Roster) Entries() []RosterEntry {
	seen := make(map[string]bool)

	var out []RosterEntry

	for _, team := range r.Teams {
		for _, d := range team.Drivers {
			if d.Slug == "" || seen[d.Slug] {
				continue
			}

			seen[d.Slug] = true
			out = append(out, RosterEntry{Driver: d, Team: team})
		}
	}

	return out
}

// ByDriverSlug indexes roster entries by driver slug.
func (r *Roster) ByDriverSlug() map[string]RosterEntry {
	out := make(map[string]RosterEntry)
	for _, e := range r.Entries() {
		out[e.Driver.Slug] = e
	}

	return out
}

// FillSlugs derives missing team and driver slugs from display names.
func (r *Roster) FillSlugs(derive func(string) string) {
	for i := range r.Teams {
		team := &r.Teams[i]
		if team.Slug == "" {
			team.Slug = derive(team.Name)
		}

		for j := range team.Drivers {
			d := &team.Drivers[j]
			if d.Slug == "" {
				d.Slug = derive(d.Name)
			}
		}
	}
}
