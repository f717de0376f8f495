// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"encoding/json"
	"strings"
)

// segment is one element of a content list. Segments appear either as bare
// strings or as objects with a text field and an optional type tag.
type segment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExtractText pulls the generated text out of a call result. When the
// response carries an ordered content list, every text segment is
// concatenated newline-joined in original order; otherwise the single text
// field is used. Absent or unexpected shapes yield the empty string rather
// than an error; the client reports an empty result as EmptyOutputError.
func ExtractText(wire wireResponse) string {
	if len(wire.Content) == 0 {
		return strings.TrimSpace(wire.Text)
	}

	var parts []string
	for _, raw := range wire.Content {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				parts = append(parts, s)
			}
			continue
		}

		var seg segment
		if err := json.Unmarshal(raw, &seg); err != nil {
			continue
		}
		if seg.Type != "" && seg.Type != "text" {
			continue
		}
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
