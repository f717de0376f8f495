// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the staged evidence-synthesis workflow for a
// registered source document. Implements: prd001-pipeline (R1-R6);
//
//	docs/ARCHITECTURE § Pipeline.
//
// Each stage is a two-phase saga: a search-enabled discovery call that
// produces free text, then a search-disabled cleanup call that converts
// that text to strict JSON. The discovery text is persisted before cleanup
// runs, so a cleanup failure never discards completed discovery work. A
// stage only runs when its upstream stage has non-empty structured output;
// the run halts on the first stage that does not complete.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/evidence-engine/internal/genai"
	"github.com/pdiddy/evidence-engine/internal/library"
	"github.com/pdiddy/evidence-engine/internal/source"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Runner executes pipeline stages against one library store.
type Runner struct {
	backend genai.Backend
	store   *library.Store
	sources *source.Register
	out     io.Writer
}

// New assembles a Runner. Progress lines go to w.
func New(backend genai.Backend, store *library.Store, sources *source.Register, w io.Writer) *Runner {
	return &Runner{backend: backend, store: store, sources: sources, out: w}
}

// RunRequest selects what to run for one entry.
type RunRequest struct {
	// EntryID is the source document slug, which doubles as the library
	// entry id.
	EntryID string

	// From resumes the run at the named stage. Empty starts at claims.
	From types.Stage

	// Only runs a single stage instead of the remaining sequence.
	Only types.Stage

	// DeepDive appends the per-group thesis deep-dive after the required
	// stages.
	DeepDive bool
}

// RunSummary reports which stages completed before the run ended.
type RunSummary struct {
	EntryID   string
	Completed []types.Stage
}

// Run executes the selected stages in order, halting on the first stage
// that fails. The summary lists the stages that completed; the error is
// the halting stage's failure, nil when every selected stage completed.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	summary := RunSummary{EntryID: req.EntryID}

	stages, err := planStages(req)
	if err != nil {
		return summary, err
	}

	for _, stage := range stages {
		fmt.Fprintf(r.out, "running %s %s\n", req.EntryID, stage)
		if err := r.RunStage(ctx, req.EntryID, stage); err != nil {
			fmt.Fprintf(r.out, "failed  %s %s: %v\n", req.EntryID, stage, err)
			return summary, fmt.Errorf("stage %s: %w", stage, err)
		}
		summary.Completed = append(summary.Completed, stage)
	}

	return summary, nil
}

// planStages resolves the request into an ordered stage list.
func planStages(req RunRequest) ([]types.Stage, error) {
	if req.Only != "" {
		if req.Only != types.StageThesisDeepDive && stageIndex(req.Only) < 0 {
			return nil, fmt.Errorf("unknown stage %q", req.Only)
		}
		return []types.Stage{req.Only}, nil
	}

	start := 0
	if req.From != "" {
		start = stageIndex(req.From)
		if start < 0 {
			return nil, fmt.Errorf("unknown stage %q", req.From)
		}
	}

	stages := append([]types.Stage{}, types.Stages[start:]...)
	if req.DeepDive {
		stages = append(stages, types.StageThesisDeepDive)
	}
	return stages, nil
}

func stageIndex(stage types.Stage) int {
	for i, s := range types.Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

// requiredStage returns the upstream stage whose structured output gates
// the given stage.
func requiredStage(stage types.Stage) types.Stage {
	if stage == types.StageThesisDeepDive {
		return types.StageResearchGroups
	}
	i := stageIndex(stage)
	if i <= 0 {
		return types.StageSource
	}
	return types.Stages[i-1]
}

// entryFor loads the entry for a stage run, creating it on the claims
// stage. Later stages require an existing entry with the upstream stage's
// non-empty structured output.
func (r *Runner) entryFor(ctx context.Context, id string, stage types.Stage, ref types.SourceRef) (*types.Entry, error) {
	entry, err := r.store.Get(ctx, id)
	switch {
	case errors.Is(err, library.ErrNotFound):
		if stage != types.StageClaims {
			return nil, &types.MissingDependencyError{Stage: stage, Requires: requiredStage(stage)}
		}
		return r.store.Upsert(ctx, id, &types.Entry{
			Label:       ref.Title,
			GeneratedAt: time.Now().UTC(),
			Source:      ref,
			State:       types.StateCreated,
		})
	case err != nil:
		return nil, err
	}

	if stage != types.StageClaims && !entry.HasStructured(requiredStage(stage)) {
		return nil, &types.MissingDependencyError{Stage: stage, Requires: requiredStage(stage)}
	}
	return entry, nil
}
