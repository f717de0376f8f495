// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/evidence-engine/internal/genai"
	"github.com/pdiddy/evidence-engine/internal/normalize"
	"github.com/pdiddy/evidence-engine/internal/prompt"
	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// runDeepDive expands the thesis records group by group. Each group gets
// its own discovery and cleanup calls; records merge into the existing
// theses output by researcher name, so re-running refreshes rather than
// duplicates. A failure after some groups completed keeps their merged
// records.
func (r *Runner) runDeepDive(ctx context.Context, entry *types.Entry) error {
	var records []types.ThesisRecord
	if entry.Theses != nil {
		records = entry.Theses.Records
	}
	var rawParts []string
	var notes []string

	for _, group := range groupsOf(entry) {
		p, err := prompt.ThesisDeepDiveDiscovery(entry.Source, group)
		if err != nil {
			return err
		}

		res, err := r.backend.Generate(ctx, genai.Request{Input: p.Text, Search: true})
		if err != nil {
			return fmt.Errorf("deep-dive discovery for %q: %w", group.Name, err)
		}

		rawParts = append(rawParts, fmt.Sprintf("## %s\n\n%s", group.Name, res.Text))
		notes = append(notes, p.Notes...)
		out := types.StageOutput{
			RawText:     strings.Join(rawParts, "\n\n"),
			PromptNotes: notes,
			GeneratedAt: time.Now().UTC(),
		}

		// Persist discovery before cleanup, existing records intact.
		if _, err := r.store.Upsert(ctx, entry.ID, &types.Entry{
			Theses: &types.ThesesOutput{StageOutput: out, Records: records},
		}); err != nil {
			return fmt.Errorf("persisting deep-dive text: %w", err)
		}

		data, err := r.cleanup(ctx, types.StageThesisDeepDive, res.Text)
		if err != nil {
			return err
		}

		found, err := normalize.Theses(data)
		if err != nil {
			return structuredErr(types.StageThesisDeepDive, err)
		}

		records = mergeRecords(records, found)
		if _, err := r.store.Upsert(ctx, entry.ID, &types.Entry{
			State:  types.StateFor(types.StageThesisDeepDive),
			Theses: &types.ThesesOutput{StageOutput: out, Records: records},
		}); err != nil {
			return err
		}

		fmt.Fprintf(r.out, "completed %s %s %q (%d records)\n",
			entry.ID, types.StageThesisDeepDive, group.Name, len(found))
	}

	return nil
}

// mergeRecords overlays found onto existing, matching by researcher name.
func mergeRecords(existing, found []types.ThesisRecord) []types.ThesisRecord {
	merged := append([]types.ThesisRecord{}, existing...)

	byName := make(map[string]int, len(merged))
	for i, rec := range merged {
		byName[resolve.NormalizeTitle(rec.Name)] = i
	}

	for _, rec := range found {
		key := resolve.NormalizeTitle(rec.Name)
		if i, ok := byName[key]; ok {
			merged[i] = rec
			continue
		}
		byName[key] = len(merged)
		merged = append(merged, rec)
	}
	return merged
}
