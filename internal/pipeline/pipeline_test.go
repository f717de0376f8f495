// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-engine/internal/genai"
	"github.com/pdiddy/evidence-engine/internal/library"
	"github.com/pdiddy/evidence-engine/internal/source"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- scripted backend ---

type step struct {
	text string
	err  error
}

// scriptBackend replays canned generation results in call order and
// records every request for later assertions.
type scriptBackend struct {
	steps []step
	reqs  []genai.Request
}

func (s *scriptBackend) Generate(_ context.Context, req genai.Request) (genai.Result, error) {
	s.reqs = append(s.reqs, req)
	if len(s.steps) == 0 {
		return genai.Result{}, fmt.Errorf("unexpected generation call %d", len(s.reqs))
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if st.err != nil {
		return genai.Result{}, st.err
	}
	return genai.Result{Text: st.text}, nil
}

// --- harness ---

const alphaDoc = `Adaptive Alpha Filtering for Noisy Streams

A. Researcher, B. Colleague

DOI: 10.1234/alpha.2025

Abstract. We present an adaptive alpha filter that reduces estimation
error on noisy streaming input.`

type env struct {
	runner  *Runner
	store   *library.Store
	backend *scriptBackend
	out     *bytes.Buffer
	slug    string
}

func newEnv(t *testing.T, steps []step) *env {
	t.Helper()

	store, err := library.NewStore(types.LibraryConfig{LibraryDir: t.TempDir(), Capacity: 10})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg, err := source.NewRegister(types.SourceConfig{SourcesDir: t.TempDir()})
	require.NoError(t, err)
	ref, err := reg.Add("Adaptive Alpha Filtering for Noisy Streams", "A. Researcher, B. Colleague", alphaDoc)
	require.NoError(t, err)

	backend := &scriptBackend{steps: steps}
	out := &bytes.Buffer{}
	return &env{
		runner:  New(backend, store, reg, out),
		store:   store,
		backend: backend,
		out:     out,
		slug:    ref.Slug,
	}
}

// Cleanup responses for the full run, with the defects the repair and
// normalization layers are there to absorb: code fences, typographic
// quotes, unescaped interior quotes, mailto-wrapped emails, null words in
// numeric fields, and off-vocabulary enum values.

const claimsJSON = "```json\n" + `{"claims":[
 {"id":"C1","claim":"Alpha filtering cuts estimation error by 40%","strength":"Strong",
  "evidence_summary":"Table 2 reports a "40%" reduction","evidence_type":"experimental"},
 {"id":"C2","claim":"The filter adapts to “bursty” input","strength":"medium"},
 {"id":"C3","claim":"Runtime grows sublinearly with stream length","strength":"plausible"}
]}` + "\n```"

const papersJSON = `{"papers":[
 {"title":"Robust Alpha Filters for Noisy Streams","identifier":"doi:10.5555/rfilter",
  "authors":["J. Doe","K. Lin"],"year":2023,"venue":"TSP",
  "why_relevant":"same estimator family","method_overlap":["alpha weighting","online updates"]},
 {"title":"Streaming Estimation at Scale","year":"unknown","venue":null,
  "method_overlap":["a","b","c","d"]},
 {"title":"Exponential Smoothing Revisited","year":2021,"venue":"JMLR",
  "method_overlap":["alpha weighting","decay schedules","error bounds"]}
]}`

const groupsJSON = `{"groups":[
 {"name":"Signals Lab","institution":"ETH Zurich","focus":"online estimation",
  "contacts":[{"name":"Dana Roe","role":"PI",
   "email":"[dana@ethz.ch](mailto:dana@ethz.ch)",
   "profiles":[{"platform":"scholar","url":"see https://scholar.example/dana."},
               {"platform":"x","url":"not public"}]}]},
 {"name":"Streaming Systems Group","institution":"TU Delft",
  "contacts":[{"name":"Milo Vance"}]}
]}`

const thesesJSON = `{"records":[
 {"name":"Dana Roe","email":"dana@ethz.ch",
  "latest_publication":{"title":"Alpha Filters Revisited","year":2024,"venue":"ICASSP","url":null},
  "phd_thesis":{"title":"","year":null,"institution":"","url":null},
  "data_availability":"public"}
]}`

const patentsJSON = `{"patents":[
 {"patent_number":"US9876543B2","title":"Adaptive filter apparatus","assignee":null,
  "url":"https://patents.example/US9876543B2",
  "overlap_with_paper":{"claim_ids":["C1"],"summary":"claims adaptive weighting"}}
]}`

const verifiedJSON = `{"claims":[
 {"claim_id":"C1","original_claim":"Alpha filtering cuts estimation error by 40%",
  "verification_status":"partially verified","confidence_level":"moderate",
  "supporting_evidence":[{"source":"paper","title":"robust alpha filters for noisy streams",
                          "relevance":"independent replication"},
                         {"source":"blog","title":"Some post"}],
  "verification_summary":"one independent replication found"},
 {"claim_id":"C2","verification_status":"novel","confidence_level":"certain"}
]}`

func fullRunSteps() []step {
	var steps []step
	for _, cleanup := range []string{claimsJSON, papersJSON, groupsJSON, thesesJSON, patentsJSON, verifiedJSON} {
		steps = append(steps, step{text: "discovery notes"}, step{text: cleanup})
	}
	return steps
}

// --- tests ---

func TestRunAllStages(t *testing.T) {
	e := newEnv(t, fullRunSteps())
	ctx := context.Background()

	summary, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug})
	require.NoError(t, err)
	assert.Equal(t, types.Stages, summary.Completed)
	require.Len(t, e.backend.reqs, 12)

	// Discovery calls search; cleanup calls must not.
	for i, req := range e.backend.reqs {
		assert.Equal(t, i%2 == 0, req.Search, "call %d", i)
	}

	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	assert.Equal(t, types.StateVerifiedReady, entry.State)
	assert.Equal(t, "10.1234/alpha.2025", entry.Source.DOI)

	// Claims: repaired interior quotes, enum folding on the closed set.
	require.NotNil(t, entry.ClaimsAnalysis)
	claims := entry.ClaimsAnalysis.Claims
	require.Len(t, claims, 3)
	assert.Equal(t, types.StrengthHigh, claims[0].Strength)
	assert.Equal(t, `Table 2 reports a "40%" reduction`, claims[0].EvidenceSummary)
	assert.Equal(t, types.StrengthModerate, claims[1].Strength)
	assert.Equal(t, `The filter adapts to "bursty" input`, claims[1].Claim)
	assert.Equal(t, types.StrengthUnclear, claims[2].Strength)

	// Papers: unknown year is nil, overlap fixed at three elements.
	require.NotNil(t, entry.SimilarPapers)
	papers := entry.SimilarPapers.Papers
	require.Len(t, papers, 3)
	assert.Equal(t, []string{"alpha weighting", "online updates", "not reported"}, papers[0].MethodOverlap)
	assert.Nil(t, papers[1].Year)
	assert.Nil(t, papers[1].Venue)
	assert.Len(t, papers[1].MethodOverlap, 3)

	// Groups: mailto unwrapped, only the usable profile URL kept.
	require.NotNil(t, entry.ResearchGroups)
	require.Len(t, entry.ResearchGroups.Groups, 2)
	contact := entry.ResearchGroups.Groups[0].Contacts[0]
	require.NotNil(t, contact.Email)
	assert.Equal(t, "dana@ethz.ch", *contact.Email)
	require.Len(t, contact.Profiles, 1)
	assert.Equal(t, "https://scholar.example/dana", contact.Profiles[0].URL)

	// Theses: all-empty thesis block collapses to nil.
	require.NotNil(t, entry.Theses)
	require.Len(t, entry.Theses.Records, 1)
	rec := entry.Theses.Records[0]
	assert.Nil(t, rec.PhDThesis)
	assert.Equal(t, types.AvailabilityYes, rec.DataAvailability)

	// Patents: null assignee stays nil.
	require.NotNil(t, entry.Patents)
	require.Len(t, entry.Patents.Patents, 1)
	assert.Nil(t, entry.Patents.Patents[0].Assignee)
	assert.Equal(t, []string{"C1"}, entry.Patents.Patents[0].OverlapWithPaper.ClaimIDs)

	// Verified claims: evidence titles canonicalized against the corpus,
	// unknown-source evidence dropped, off-vocabulary values folded
	// conservatively.
	require.NotNil(t, entry.VerifiedClaims)
	verified := entry.VerifiedClaims.Claims
	require.Len(t, verified, 2)
	assert.Equal(t, types.StatusPartiallyVerified, verified[0].VerificationStatus)
	assert.Equal(t, types.ConfidenceModerate, verified[0].ConfidenceLevel)
	require.Len(t, verified[0].SupportingEvidence, 1)
	assert.Equal(t, "Robust Alpha Filters for Noisy Streams", verified[0].SupportingEvidence[0].Title)
	assert.Empty(t, verified[0].ContradictingEvidence)
	assert.Equal(t, types.StatusInsufficientEvidence, verified[1].VerificationStatus)
	assert.Equal(t, types.ConfidenceLow, verified[1].ConfidenceLevel)
}

func TestRunHaltsOnFailure(t *testing.T) {
	steps := fullRunSteps()[:2]
	steps = append(steps, step{err: &types.GenerationRejectedError{Message: "overloaded"}})
	e := newEnv(t, steps)
	ctx := context.Background()

	summary, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug})
	require.Error(t, err)
	var rejected *types.GenerationRejectedError
	assert.ErrorAs(t, err, &rejected)
	assert.Equal(t, []types.Stage{types.StageClaims}, summary.Completed)

	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	assert.Equal(t, types.StateClaimsReady, entry.State)
	assert.True(t, entry.HasStructured(types.StageClaims))
}

func TestRunStageGating(t *testing.T) {
	e := newEnv(t, fullRunSteps()[:2])
	ctx := context.Background()

	// No entry at all: only the claims stage may run.
	err := e.runner.RunStage(ctx, e.slug, types.StagePatents)
	var missing *types.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, types.StagePatents, missing.Stage)
	assert.Equal(t, types.StageTheses, missing.Requires)

	// With only claims done, patents still needs theses.
	require.NoError(t, e.runner.RunStage(ctx, e.slug, types.StageClaims))
	err = e.runner.RunStage(ctx, e.slug, types.StagePatents)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, types.StageTheses, missing.Requires)
	assert.Empty(t, e.backend.steps, "gating must not consume generation calls")
}

func TestRunStageUnknownSource(t *testing.T) {
	e := newEnv(t, nil)

	err := e.runner.RunStage(context.Background(), "no-such-doc", types.StageClaims)
	var missing *types.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, types.StageSource, missing.Requires)
}

func TestRunResumesFromStage(t *testing.T) {
	e := newEnv(t, fullRunSteps())
	ctx := context.Background()

	_, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug, Only: types.StageClaims})
	require.NoError(t, err)

	summary, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug, From: types.StageSimilarPapers})
	require.NoError(t, err)
	assert.Equal(t, types.Stages[1:], summary.Completed)

	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	assert.Equal(t, types.StateVerifiedReady, entry.State)
}

func TestRunUnknownStage(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.runner.Run(context.Background(), RunRequest{EntryID: e.slug, From: "nonsense"})
	assert.Error(t, err)
	_, err = e.runner.Run(context.Background(), RunRequest{EntryID: e.slug, Only: "nonsense"})
	assert.Error(t, err)
}

func TestCleanupFailureKeepsDiscoveryText(t *testing.T) {
	e := newEnv(t, []step{
		{text: "useful discovery notes"},
		{text: "I could not produce JSON, sorry."},
	})
	ctx := context.Background()

	err := e.runner.RunStage(ctx, e.slug, types.StageClaims)
	var malformed *types.MalformedStructuredError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, types.StageClaims, malformed.Stage)

	// Discovery output survives; the stage stays incomplete.
	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	require.NotNil(t, entry.ClaimsAnalysis)
	assert.Equal(t, "useful discovery notes", entry.ClaimsAnalysis.RawText)
	assert.False(t, entry.HasStructured(types.StageClaims))
	assert.Equal(t, types.StateCreated, entry.State)
}

func TestSchemaViolation(t *testing.T) {
	e := newEnv(t, []step{
		{text: "discovery notes"},
		{text: `{"claims":[{"strength":"High"}]}`},
	})

	err := e.runner.RunStage(context.Background(), e.slug, types.StageClaims)
	var schema *types.SchemaViolationError
	require.ErrorAs(t, err, &schema)
	assert.Equal(t, types.StageClaims, schema.Stage)
}

func TestDeepDiveMergesRecords(t *testing.T) {
	deepDiveJSON := `{"records":[
	 {"name":"Dana Roe","email":"dana@ethz.ch",
	  "phd_thesis":{"title":"Adaptive Estimation","year":2019,"institution":"ETH Zurich"},
	  "data_availability":"yes"},
	 {"name":"Eli Kim","data_availability":"no"}
	]}`
	e := newEnv(t, []step{
		{text: "deep dive notes"},
		{text: deepDiveJSON},
	})
	ctx := context.Background()

	_, err := e.store.Upsert(ctx, e.slug, &types.Entry{
		State: types.StateThesesReady,
		ResearchGroups: &types.ResearchGroupsOutput{
			Groups: []types.ResearchGroup{{Name: "Signals Lab"}},
		},
		Theses: &types.ThesesOutput{
			Records: []types.ThesisRecord{{Name: "Dana Roe", DataAvailability: types.AvailabilityUnknown}},
		},
	})
	require.NoError(t, err)

	summary, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug, Only: types.StageThesisDeepDive})
	require.NoError(t, err)
	assert.Equal(t, []types.Stage{types.StageThesisDeepDive}, summary.Completed)

	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	require.NotNil(t, entry.Theses)
	require.Len(t, entry.Theses.Records, 2)

	dana := entry.Theses.Records[0]
	assert.Equal(t, "Dana Roe", dana.Name)
	require.NotNil(t, dana.PhDThesis, "deep dive refreshes the matching record")
	assert.Equal(t, "Adaptive Estimation", dana.PhDThesis.Title)
	assert.Equal(t, "Eli Kim", entry.Theses.Records[1].Name)
}

func TestRerunFailureKeepsLastGoodOutput(t *testing.T) {
	e := newEnv(t, append(fullRunSteps(),
		step{text: "fresh discovery notes"},
		step{text: "I could not produce JSON, sorry."},
	))
	ctx := context.Background()

	_, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug})
	require.NoError(t, err)

	err = e.runner.RunStage(ctx, e.slug, types.StageClaims)
	var malformed *types.MalformedStructuredError
	require.ErrorAs(t, err, &malformed)

	// The failed re-run keeps the previous completed claims, so the
	// downstream stages still see their dependency satisfied.
	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	require.NotNil(t, entry.ClaimsAnalysis)
	assert.Equal(t, "fresh discovery notes", entry.ClaimsAnalysis.RawText)
	require.Len(t, entry.ClaimsAnalysis.Claims, 3)
	assert.True(t, entry.HasStructured(types.StageClaims))
	assert.Equal(t, types.StateVerifiedReady, entry.State)
}

func TestRerunNeverRegressesState(t *testing.T) {
	e := newEnv(t, append(fullRunSteps(), fullRunSteps()[:2]...))
	ctx := context.Background()

	_, err := e.runner.Run(ctx, RunRequest{EntryID: e.slug})
	require.NoError(t, err)

	require.NoError(t, e.runner.RunStage(ctx, e.slug, types.StageClaims))

	entry, err := e.store.Get(ctx, e.slug)
	require.NoError(t, err)
	assert.Equal(t, types.StateVerifiedReady, entry.State)
	assert.True(t, entry.HasStructured(types.StageVerifiedClaims))
}

func TestProgressLines(t *testing.T) {
	e := newEnv(t, fullRunSteps()[:2])

	_, err := e.runner.Run(context.Background(), RunRequest{EntryID: e.slug, Only: types.StageClaims})
	require.NoError(t, err)
	assert.Contains(t, e.out.String(), "running "+e.slug+" claims")
	assert.Contains(t, e.out.String(), "completed "+e.slug+" claims (3 records)")
}

var _ genai.Backend = (*scriptBackend)(nil)

func TestErrorsUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &types.MalformedStructuredError{Stage: types.StageClaims, Err: inner}
	assert.ErrorIs(t, err, inner)
}
