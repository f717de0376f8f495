// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Claims parses repaired cleanup JSON into Claim records. Records lacking
// both an ID and claim text are dropped. Claim IDs are made unique within
// the batch: a duplicated or missing ID is reassigned to the next free
// "Cn" label so downstream stages can reference claims unambiguously.
func Claims(data []byte) ([]types.Claim, error) {
	raw, err := decode(data, "claims")
	if err != nil {
		return nil, err
	}

	used := map[string]bool{}
	next := 1
	freshID := func() string {
		for {
			id := fmt.Sprintf("C%d", next)
			next++
			if !used[id] {
				return id
			}
		}
	}

	var claims []types.Claim
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		c := types.Claim{
			ID:              strings.TrimSpace(r.str("id", "claim_id")),
			Claim:           r.str("claim", "text", "statement"),
			EvidenceSummary: r.str("evidence_summary", "evidence"),
			KeyNumbers:      r.strList("key_numbers", "numbers"),
			Source:          r.str("source", "location"),
			Strength:        Strength(r.str("strength")),
			Assumptions:     r.str("assumptions"),
			EvidenceType:    r.str("evidence_type", "type"),
		}

		// No identity at all: drop rather than persist a placeholder.
		if c.ID == "" && c.Claim == "" {
			continue
		}

		if c.ID == "" || used[c.ID] {
			c.ID = freshID()
		}
		used[c.ID] = true

		claims = append(claims, c)
	}

	if len(claims) == 0 {
		return nil, fmt.Errorf("%w: no usable claim records", ErrSchema)
	}
	return claims, nil
}
