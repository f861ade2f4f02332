package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Extra holds the members of a JSON object that the Go type does not name.
// They are written back after the named fields, so a load-then-write pass
// never drops data added by other tools (feeder-series blocks, extra season
// counters, notes).
type Extra map[string]json.RawMessage

var knownKeys sync.Map // reflect.Type -> map[string]bool

// jsonKeys returns the member names a struct type decodes.
func jsonKeys(t reflect.Type) map[string]bool {
	if cached, ok := knownKeys.Load(t); ok {
		return cached.(map[string]bool)
	}

	keys := make(map[string]bool, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")

		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}

		keys[name] = true
	}

	knownKeys.Store(t, keys)

	return keys
}

// decodeWithExtra unmarshals data into v (a pointer to a method-less alias
// struct) and collects the members v does not name into extra.
func decodeWithExtra(data []byte, v any, extra *Extra) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	known := jsonKeys(reflect.TypeOf(v).Elem())

	// encoding/json matches names case-insensitively
	for k := range all {
		if known[k] {
			delete(all, k)
			continue
		}

		for name := range known {
			if strings.EqualFold(name, k) {
				delete(all, k)
				break
			}
		}
	}

	if len(all) == 0 {
		*extra = nil
	} else {
		*extra = all
	}

	return nil
}

// encodeWithExtra marshals v (a method-less alias struct) and appends extra
// in key order.
func encodeWithExtra(v any, extra Extra) ([]byte, error) {
	data, err := marshalNoEscape(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b bytes.Buffer

	b.Write(data[:len(data)-1])

	wrote := len(bytes.TrimSpace(data[1:len(data)-1])) > 0

	for _, k := range keys {
		name, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}

		if wrote {
			b.WriteByte(',')
		}

		b.Write(name)
		b.WriteByte(':')

		raw := extra[k]
		if len(bytes.TrimSpace(raw)) == 0 {
			raw = json.RawMessage("null")
		}

		b.Write(raw)

		wrote = true
	}

	b.WriteByte('}')

	return b.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var b bytes.Buffer

	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

type (
	statsDocumentJSON StatsDocument
	driverRecordJSON  DriverRecord
	driverSeasonJSON  DriverSeason
	driverAllTimeJSON DriverAllTime
	careerRowJSON     CareerRow
	juniorCareerJSON  JuniorCareer
	teamRecordJSON    TeamRecord
	teamSeasonJSON    TeamSeason
	teamAllTimeJSON   TeamAllTime
)

// MarshalJSON writes the named fields followed by Extra.
func (d StatsDocument) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(statsDocumentJSON(d), d.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (d *StatsDocument) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*statsDocumentJSON)(d), &d.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (r DriverRecord) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(driverRecordJSON(r), r.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (r *DriverRecord) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*driverRecordJSON)(r), &r.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (s DriverSeason) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(driverSeasonJSON(s), s.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (s *DriverSeason) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*driverSeasonJSON)(s), &s.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (a DriverAllTime) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(driverAllTimeJSON(a), a.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (a *DriverAllTime) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*driverAllTimeJSON)(a), &a.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (c CareerRow) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(careerRowJSON(c), c.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (c *CareerRow) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*careerRowJSON)(c), &c.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (j JuniorCareer) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(juniorCareerJSON(j), j.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (j *JuniorCareer) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*juniorCareerJSON)(j), &j.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (r TeamRecord) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(teamRecordJSON(r), r.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (r *TeamRecord) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*teamRecordJSON)(r), &r.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (s TeamSeason) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(teamSeasonJSON(s), s.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (s *TeamSeason) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*teamSeasonJSON)(s), &s.Extra)
}

// MarshalJSON writes the named fields followed by Extra.
func (a TeamAllTime) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(teamAllTimeJSON(a), a.Extra)
}

// UnmarshalJSON keeps unknown members in Extra.
func (a *TeamAllTime) UnmarshalJSON(data []byte) error {
	return decodeWithExtra(data, (*teamAllTimeJSON)(a), &a.Extra)
}
