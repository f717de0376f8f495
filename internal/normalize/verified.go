// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// VerifiedClaims parses repaired cleanup JSON into VerifiedClaim records.
// Records without a claim ID are dropped. Status and confidence fold onto
// their closed sets with the conservative fallback; evidence items with an
// unrecognized source or an empty title are dropped rather than attributed
// to a guessed provenance.
func VerifiedClaims(data []byte) ([]types.VerifiedClaim, error) {
	raw, err := decode(data, "claims", "verified_claims", "verifications")
	if err != nil {
		return nil, err
	}

	var verified []types.VerifiedClaim
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		v := types.VerifiedClaim{
			ClaimID:               r.str("claim_id", "id"),
			OriginalClaim:         r.str("original_claim", "claim"),
			VerificationStatus:    Status(r.str("verification_status", "status")),
			SupportingEvidence:    evidenceItems(r.list("supporting_evidence", "supporting")),
			ContradictingEvidence: evidenceItems(r.list("contradicting_evidence", "contradicting")),
			VerificationSummary:   r.str("verification_summary", "summary"),
			ConfidenceLevel:       Confidence(r.str("confidence_level", "confidence")),
		}

		if v.ClaimID == "" {
			continue
		}
		verified = append(verified, v)
	}

	if len(verified) == 0 {
		return nil, fmt.Errorf("%w: no usable verified-claim records", ErrSchema)
	}
	return verified, nil
}

// evidenceItems normalizes evidence lists attached to a verdict.
func evidenceItems(raw []any) []types.EvidenceItem {
	out := []types.EvidenceItem{}
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		src, known := evidenceSource(r.str("source", "type"))
		title := r.str("title", "name")
		if !known || title == "" {
			continue
		}

		out = append(out, types.EvidenceItem{
			Source:    src,
			Title:     title,
			Relevance: r.str("relevance", "note"),
		})
	}
	return out
}
