// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// ResearchGroups parses repaired cleanup JSON into ResearchGroup records.
// Groups without a name are dropped, as are contacts without a name.
func ResearchGroups(data []byte) ([]types.ResearchGroup, error) {
	raw, err := decode(data, "groups", "research_groups")
	if err != nil {
		return nil, err
	}

	var groups []types.ResearchGroup
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		g := types.ResearchGroup{
			Name:        r.str("name", "group", "group_name"),
			Institution: r.strPtr("institution", "affiliation"),
			Focus:       r.strPtr("focus", "research_focus"),
			Contacts:    contacts(r.list("contacts", "members")),
		}

		if g.Name == "" {
			continue
		}
		groups = append(groups, g)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no usable group records", ErrSchema)
	}
	return groups, nil
}

// contacts normalizes a list of person contacts, dropping nameless ones.
func contacts(raw []any) []types.PersonContact {
	out := []types.PersonContact{}
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}

		c := types.PersonContact{
			Name:     r.str("name"),
			Role:     r.strPtr("role", "position"),
			ORCID:    r.strPtr("orcid"),
			Profiles: profiles(r.list("profiles")),
		}
		if email := r.str("email"); email != "" {
			c.Email = emailPtr(email)
		}

		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// profiles normalizes a list of public profiles, keeping only entries with
// a usable https URL.
func profiles(raw []any) []types.Profile {
	out := []types.Profile{}
	for _, el := range raw {
		r, ok := asRecord(el)
		if !ok {
			continue
		}
		u, valid := CleanURL(r.str("url", "link"))
		if !valid {
			continue
		}
		out = append(out, types.Profile{
			Platform: r.str("platform", "site"),
			URL:      u,
		})
	}
	return out
}
