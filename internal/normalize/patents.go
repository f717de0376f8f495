// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Patents parses repaired cleanup JSON into Patent records. Records
// without a patent number are dropped. The URL field keeps only a
// well-formed https URL; everything else becomes the empty string.
func Patents(data []byte) ([]types.Patent, error) {
	raw, err := decode(data, "patents")
	if err != nil {
		return nil, err
	}

	var patents []types.Patent
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		p := types.Patent{
			PatentNumber: r.str("patent_number", "number", "id"),
			Title:        r.str("title"),
			Assignee:     r.strPtr("assignee"),
			FilingDate:   r.strPtr("filing_date", "filed"),
			GrantDate:    r.strPtr("grant_date", "granted"),
			Abstract:     r.strPtr("abstract"),
		}

		if u, valid := CleanURL(r.str("url", "link")); valid {
			p.URL = u
		}

		if ov := r.sub("overlap_with_paper", "overlap"); ov != nil {
			p.OverlapWithPaper = types.PatentOverlap{
				ClaimIDs: ov.strList("claim_ids", "claims"),
				Summary:  ov.str("summary"),
			}
		}

		if p.PatentNumber == "" {
			continue
		}
		patents = append(patents, p)
	}

	if len(patents) == 0 {
		return nil, fmt.Errorf("%w: no usable patent records", ErrSchema)
	}
	return patents, nil
}
