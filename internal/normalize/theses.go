// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Theses parses repaired cleanup JSON into ThesisRecord records. Records
// without a researcher name are dropped. A thesis block whose every field
// is empty collapses to nil rather than an empty placeholder.
func Theses(data []byte) ([]types.ThesisRecord, error) {
	raw, err := decode(data, "records", "theses", "researchers")
	if err != nil {
		return nil, err
	}

	var records []types.ThesisRecord
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		rec := types.ThesisRecord{
			Name:             r.str("name", "researcher"),
			DataAvailability: Availability(r.str("data_availability", "availability")),
		}
		if email := r.str("email"); email != "" {
			rec.Email = emailPtr(email)
		}

		if pub := r.sub("latest_publication", "publication"); pub != nil {
			rec.LatestPublication = publication(pub)
		}
		if th := r.sub("phd_thesis", "thesis"); th != nil {
			rec.PhDThesis = thesis(th)
		}

		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no usable thesis records", ErrSchema)
	}
	return records, nil
}

func publication(r record) types.Publication {
	return types.Publication{
		Title: r.str("title"),
		Year:  r.intPtr("year"),
		Venue: r.str("venue", "journal"),
		URL:   urlPtr(r.str("url", "link")),
	}
}

func thesis(r record) *types.Thesis {
	t := types.Thesis{
		Title:       r.str("title"),
		Year:        r.intPtr("year"),
		Institution: r.str("institution", "university"),
		URL:         urlPtr(r.str("url", "link")),
	}
	if t.Title == "" && t.Year == nil && t.Institution == "" && t.URL == nil {
		return nil
	}
	return &t
}
