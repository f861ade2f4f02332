package career

import (
	"encoding/json"
	"sort"

	"f1stats/internal/models"
	"f1stats/internal/storage"
)

// LoadWikiCareers reads the auxiliary career file: an object mapping driver
// slugs to opaque career data.
func LoadWikiCareers(path string) (map[string]json.RawMessage, error) {
	var careers map[string]json.RawMessage
	if err := storage.ReadJSON(path, &careers); err != nil {
		return nil, err
	}

	return careers, nil
}

// AttachWikiCareers returns a copy of doc with careerFromWiki set from
// careers, creating driver records that do not exist yet. It returns the
// slugs that were touched.
func AttachWikiCareers(doc *models.StatsDocument, careers map[string]json.RawMessage) (*models.StatsDocument, []string) {
	out := doc.Clone()

	slugs := make([]string, 0, len(careers))
	for s := range careers {
		slugs = append(slugs, s)
	}

	sort.Strings(slugs)

	for _, s := range slugs {
		out.Driver(s).CareerFromWiki = careers[s]
	}

	return out, slugs
}
