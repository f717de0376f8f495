// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// methodOverlapLen is the fixed number of shared methodological elements a
// similar paper reports.
const methodOverlapLen = 3

// SimilarPapers parses repaired cleanup JSON into SimilarPaper records.
// Papers without a title are dropped. MethodOverlap is padded or truncated
// to exactly three elements.
func SimilarPapers(data []byte) ([]types.SimilarPaper, error) {
	raw, err := decode(data, "papers", "similar_papers")
	if err != nil {
		return nil, err
	}

	var papers []types.SimilarPaper
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		p := types.SimilarPaper{
			Identifier:    r.str("identifier", "doi", "id"),
			Title:         r.str("title"),
			Authors:       r.strList("authors"),
			Year:          r.intPtr("year"),
			Venue:         r.strPtr("venue", "journal"),
			WhyRelevant:   r.str("why_relevant", "relevance"),
			MethodOverlap: r.strList("method_overlap", "overlap"),
			Gaps:          r.strPtr("gaps"),
		}

		if cmpRec := r.sub("method_comparison", "comparison"); cmpRec != nil {
			p.MethodComparison = types.MethodComparison{
				Sample:    cmpRec.str("sample"),
				Materials: cmpRec.str("materials"),
				Equipment: cmpRec.str("equipment"),
				Procedure: cmpRec.str("procedure"),
				Outcomes:  cmpRec.str("outcomes"),
			}
		}

		if p.Title == "" {
			continue
		}

		for len(p.MethodOverlap) < methodOverlapLen {
			p.MethodOverlap = append(p.MethodOverlap, "not reported")
		}
		p.MethodOverlap = p.MethodOverlap[:methodOverlapLen]

		papers = append(papers, p)
	}

	if len(papers) == 0 {
		return nil, fmt.Errorf("%w: no usable paper records", ErrSchema)
	}
	return papers, nil
}
