// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/evidence-engine/internal/genai"
	"github.com/pdiddy/evidence-engine/internal/jsonrepair"
	"github.com/pdiddy/evidence-engine/internal/normalize"
	"github.com/pdiddy/evidence-engine/internal/prompt"
	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// RunStage executes one stage's two-phase saga for the entry identified by
// id. The discovery text is persisted as soon as it arrives; structured
// output and the entry state are persisted only when cleanup and
// normalization both succeed.
func (r *Runner) RunStage(ctx context.Context, id string, stage types.Stage) error {
	var ref types.SourceRef
	var docText string
	if stage == types.StageClaims {
		doc, err := r.sources.Load(id)
		if err != nil {
			return &types.MissingDependencyError{Stage: stage, Requires: types.StageSource}
		}
		ref, docText = doc.Ref, doc.Text
	}

	entry, err := r.entryFor(ctx, id, stage, ref)
	if err != nil {
		return err
	}

	if stage == types.StageThesisDeepDive {
		return r.runDeepDive(ctx, entry)
	}

	discovery, err := discoveryPrompt(stage, entry, docText)
	if err != nil {
		return err
	}

	out, err := r.discover(ctx, entry, stage, discovery)
	if err != nil {
		return err
	}

	data, err := r.cleanup(ctx, stage, out.RawText)
	if err != nil {
		return err
	}

	partial, count, err := structuredPartial(stage, entry, out, data)
	if err != nil {
		return err
	}

	if _, err := r.store.Upsert(ctx, entry.ID, partial); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "completed %s %s (%d records)\n", entry.ID, stage, count)
	return nil
}

// discoveryPrompt renders the stage's discovery prompt from the entry's
// upstream outputs.
func discoveryPrompt(stage types.Stage, entry *types.Entry, docText string) (prompt.Prompt, error) {
	ref := entry.Source

	switch stage {
	case types.StageClaims:
		return prompt.ClaimsDiscovery(ref, docText)
	case types.StageSimilarPapers:
		return prompt.SimilarPapersDiscovery(ref, claimsOf(entry))
	case types.StageResearchGroups:
		return prompt.ResearchGroupsDiscovery(ref, papersOf(entry))
	case types.StageTheses:
		return prompt.ThesesDiscovery(ref, groupsOf(entry))
	case types.StagePatents:
		return prompt.PatentsDiscovery(ref, claimsOf(entry))
	case types.StageVerifiedClaims:
		var theses []types.ThesisRecord
		if entry.Theses != nil {
			theses = entry.Theses.Records
		}
		var patents []types.Patent
		if entry.Patents != nil {
			patents = entry.Patents.Patents
		}
		return prompt.VerifiedClaimsDiscovery(ref, claimsOf(entry), papersOf(entry), groupsOf(entry), patents, theses)
	default:
		return prompt.Prompt{}, fmt.Errorf("unknown stage %q", stage)
	}
}

// discover runs the search-enabled discovery call and persists its raw
// text on the entry before cleanup is attempted.
func (r *Runner) discover(ctx context.Context, entry *types.Entry, stage types.Stage, p prompt.Prompt) (types.StageOutput, error) {
	res, err := r.backend.Generate(ctx, genai.Request{Input: p.Text, Search: true})
	if err != nil {
		return types.StageOutput{}, fmt.Errorf("discovery call: %w", err)
	}

	out := types.StageOutput{
		RawText:     res.Text,
		PromptNotes: p.Notes,
		GeneratedAt: time.Now().UTC(),
	}
	if _, err := r.store.Upsert(ctx, entry.ID, rawPartial(stage, entry, out)); err != nil {
		return types.StageOutput{}, fmt.Errorf("persisting discovery text: %w", err)
	}
	return out, nil
}

// cleanup runs the search-disabled conversion call and repairs common JSON
// defects in its output.
func (r *Runner) cleanup(ctx context.Context, stage types.Stage, rawText string) ([]byte, error) {
	p, err := prompt.Cleanup(stage, rawText)
	if err != nil {
		return nil, err
	}

	res, err := r.backend.Generate(ctx, genai.Request{Input: p.Text, Search: false})
	if err != nil {
		return nil, fmt.Errorf("cleanup call: %w", err)
	}
	return []byte(jsonrepair.Repair(res.Text)), nil
}

// rawPartial wraps a discovery-only stage output in a partial entry. The
// entry's current structured records ride along, so a re-run that fails
// during cleanup keeps the stage's last completed output; on a first run
// the slice is empty and dependency gating treats the stage as incomplete.
func rawPartial(stage types.Stage, entry *types.Entry, out types.StageOutput) *types.Entry {
	partial := &types.Entry{}
	switch stage {
	case types.StageClaims:
		partial.ClaimsAnalysis = &types.ClaimsAnalysis{StageOutput: out, Claims: claimsOf(entry)}
	case types.StageSimilarPapers:
		partial.SimilarPapers = &types.SimilarPapersOutput{StageOutput: out, Papers: papersOf(entry)}
	case types.StageResearchGroups:
		partial.ResearchGroups = &types.ResearchGroupsOutput{StageOutput: out, Groups: groupsOf(entry)}
	case types.StageTheses:
		var records []types.ThesisRecord
		if entry.Theses != nil {
			records = entry.Theses.Records
		}
		partial.Theses = &types.ThesesOutput{StageOutput: out, Records: records}
	case types.StagePatents:
		var patents []types.Patent
		if entry.Patents != nil {
			patents = entry.Patents.Patents
		}
		partial.Patents = &types.PatentsOutput{StageOutput: out, Patents: patents}
	case types.StageVerifiedClaims:
		var claims []types.VerifiedClaim
		if entry.VerifiedClaims != nil {
			claims = entry.VerifiedClaims.Claims
		}
		partial.VerifiedClaims = &types.VerifiedClaimsOutput{StageOutput: out, Claims: claims}
	}
	return partial
}

// structuredPartial parses the repaired cleanup output and builds the
// partial entry completing the stage, including the forward state move.
func structuredPartial(stage types.Stage, entry *types.Entry, out types.StageOutput, data []byte) (*types.Entry, int, error) {
	partial := &types.Entry{State: types.StateFor(stage)}

	switch stage {
	case types.StageClaims:
		claims, err := normalize.Claims(data)
		if err != nil {
			return nil, 0, structuredErr(stage, err)
		}
		partial.ClaimsAnalysis = &types.ClaimsAnalysis{StageOutput: out, Claims: claims}
		return partial, len(claims), nil

	case types.StageSimilarPapers:
		papers, err := normalize.SimilarPapers(data)
		if err != nil {
			return nil, 0, structuredErr(stage, err)
		}
		partial.SimilarPapers = &types.SimilarPapersOutput{StageOutput: out, Papers: papers}
		return partial, len(papers), nil

	case types.StageResearchGroups:
		groups, err := normalize.ResearchGroups(data)
		if err != nil {
			return nil, 0, structuredErr(stage, err)
		}
		partial.ResearchGroups = &types.ResearchGroupsOutput{StageOutput: out, Groups: groups}
		return partial, len(groups), nil

	case types.StageTheses:
		records, err := normalize.Theses(data)
		if err != nil {
			return nil, 0, structuredErr(stage, err)
		}
		partial.Theses = &types.ThesesOutput{StageOutput: out, Records: records}
		return partial, len(records), nil

	case types.StagePatents:
		patents, err := normalize.Patents(data)
		if err != nil {
			return nil, 0, structuredErr(stage, err)
		}
		partial.Patents = &types.PatentsOutput{StageOutput: out, Patents: patents}
		return partial, len(patents), nil

	case types.StageVerifiedClaims:
		claims, err := normalize.VerifiedClaims(data)
		if err != nil {
			return nil, 0, structuredErr(stage, err)
		}
		enrichVerified(entry, claims)
		partial.VerifiedClaims = &types.VerifiedClaimsOutput{StageOutput: out, Claims: claims}
		return partial, len(claims), nil
	}

	return nil, 0, fmt.Errorf("unknown stage %q", stage)
}

// enrichVerified canonicalizes evidence titles against the entry's corpus.
func enrichVerified(entry *types.Entry, claims []types.VerifiedClaim) {
	idx := resolve.NewIndex(entry.Source, papersOf(entry))
	for i := range claims {
		claims[i].SupportingEvidence = idx.EnrichEvidence(claims[i].SupportingEvidence)
		claims[i].ContradictingEvidence = idx.EnrichEvidence(claims[i].ContradictingEvidence)
	}
}

// structuredErr maps normalization failures onto the typed stage errors.
func structuredErr(stage types.Stage, err error) error {
	switch {
	case errors.Is(err, normalize.ErrMalformed):
		return &types.MalformedStructuredError{Stage: stage, Err: err}
	case errors.Is(err, normalize.ErrSchema):
		return &types.SchemaViolationError{Stage: stage, Reason: err.Error()}
	}
	return err
}

func claimsOf(entry *types.Entry) []types.Claim {
	if entry.ClaimsAnalysis == nil {
		return nil
	}
	return entry.ClaimsAnalysis.Claims
}

func papersOf(entry *types.Entry) []types.SimilarPaper {
	if entry.SimilarPapers == nil {
		return nil
	}
	return entry.SimilarPapers.Papers
}

func groupsOf(entry *types.Entry) []types.ResearchGroup {
	if entry.ResearchGroups == nil {
		return nil
	}
	return entry.ResearchGroups.Groups
}
