// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine
// pipeline. Implements: prd001-pipeline (Entry, Stage, EntryState);
//
//	prd002-claims .. prd007-verification (evidence records);
//	prd008-library (capacity defaults).
//
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

import "time"

// Stage names one step of the evidence pipeline, in run order.
type Stage string

const (
	StageClaims         Stage = "claims"
	StageSimilarPapers  Stage = "similar-papers"
	StageResearchGroups Stage = "research-groups"
	StageTheses         Stage = "theses"
	StagePatents        Stage = "patents"
	StageVerifiedClaims Stage = "verified-claims"

	// StageThesisDeepDive is an optional trailing stage expanding thesis
	// records per research group.
	StageThesisDeepDive Stage = "thesis-deep-dive"

	// StageSource names the source-document collaborator in dependency
	// errors; it is not a runnable stage.
	StageSource Stage = "source-document"
)

// Stages lists the required pipeline stages in dependency order. Each
// stage requires the previous stage's structured output.
var Stages = []Stage{
	StageClaims,
	StageSimilarPapers,
	StageResearchGroups,
	StageTheses,
	StagePatents,
	StageVerifiedClaims,
}

// EntryState tracks how far an entry has progressed through the pipeline.
// Stages advance the state monotonically; re-running a stage never
// regresses it.
type EntryState string

const (
	StateCreated            EntryState = "created"
	StateClaimsReady        EntryState = "claims-ready"
	StateSimilarPapersReady EntryState = "similar-papers-ready"
	StateGroupsReady        EntryState = "groups-ready"
	StateThesesReady        EntryState = "theses-ready"
	StatePatentsReady       EntryState = "patents-ready"
	StateVerifiedReady      EntryState = "verified-ready"
)

// stateRank orders entry states for monotonic advancement.
var stateRank = map[EntryState]int{
	StateCreated:            0,
	StateClaimsReady:        1,
	StateSimilarPapersReady: 2,
	StateGroupsReady:        3,
	StateThesesReady:        4,
	StatePatentsReady:       5,
	StateVerifiedReady:      6,
}

// StateFor returns the entry state reached when the given stage completes.
// The deep-dive stage refreshes thesis data without advancing the state.
func StateFor(stage Stage) EntryState {
	switch stage {
	case StageClaims:
		return StateClaimsReady
	case StageSimilarPapers:
		return StateSimilarPapersReady
	case StageResearchGroups:
		return StateGroupsReady
	case StageTheses, StageThesisDeepDive:
		return StateThesesReady
	case StagePatents:
		return StatePatentsReady
	case StageVerifiedClaims:
		return StateVerifiedReady
	default:
		return StateCreated
	}
}

// SourceRef is the coarse metadata for the source document an entry
// describes. The document's extracted text lives with the source
// collaborator, not on the entry.
type SourceRef struct {
	// Slug is the filesystem-safe identifier derived from the document.
	Slug string `json:"slug" yaml:"slug"`

	// Title is the document title.
	Title string `json:"title" yaml:"title"`

	// AuthorLine is the author string as extracted (e.g. "A. Smith, B. Lee").
	AuthorLine string `json:"author_line" yaml:"author_line"`

	// DOI is the DOI candidate found in the document, empty when none.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// StageOutput carries the provenance shared by every stage result: the raw
// discovery text and the truncation notes recorded while rendering the
// stage's prompts. The discovery text is persisted before cleanup runs so a
// cleanup failure never discards completed discovery work.
type StageOutput struct {
	// RawText is the discovery call's free-text output, kept verbatim.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// PromptNotes records truncation applied while rendering prompts.
	PromptNotes []string `json:"prompt_notes,omitempty" yaml:"prompt_notes,omitempty"`

	// GeneratedAt is when the stage last completed.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// ClaimsAnalysis is the claims stage output.
type ClaimsAnalysis struct {
	StageOutput `yaml:",inline"`
	Claims      []Claim `json:"claims" yaml:"claims"`
}

// SimilarPapersOutput is the similar-papers stage output.
type SimilarPapersOutput struct {
	StageOutput `yaml:",inline"`
	Papers      []SimilarPaper `json:"papers" yaml:"papers"`
}

// ResearchGroupsOutput is the research-groups stage output.
type ResearchGroupsOutput struct {
	StageOutput `yaml:",inline"`
	Groups      []ResearchGroup `json:"groups" yaml:"groups"`
}

// ThesesOutput is the theses stage output.
type ThesesOutput struct {
	StageOutput `yaml:",inline"`
	Records     []ThesisRecord `json:"records" yaml:"records"`
}

// PatentsOutput is the patents stage output.
type PatentsOutput struct {
	StageOutput `yaml:",inline"`
	Patents     []Patent `json:"patents" yaml:"patents"`
}

// VerifiedClaimsOutput is the verified-claims stage output.
type VerifiedClaimsOutput struct {
	StageOutput `yaml:",inline"`
	Claims      []VerifiedClaim `json:"claims" yaml:"claims"`
}

// Entry is the per-source-document record accumulating all stage outputs.
// Stage fields are nil until their stage has completed; a stage merge never
// touches the other stages' fields.
type Entry struct {
	// ID is the slug derived from the source document.
	ID string `json:"id" yaml:"id"`

	// Label is a human-readable name for the entry.
	Label string `json:"label" yaml:"label"`

	// GeneratedAt is when the entry was created.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Source references the source document.
	Source SourceRef `json:"source" yaml:"source"`

	// State is the furthest pipeline state the entry has reached.
	State EntryState `json:"state" yaml:"state"`

	ClaimsAnalysis *ClaimsAnalysis       `json:"claims_analysis,omitempty" yaml:"claims_analysis,omitempty"`
	SimilarPapers  *SimilarPapersOutput  `json:"similar_papers,omitempty" yaml:"similar_papers,omitempty"`
	ResearchGroups *ResearchGroupsOutput `json:"research_groups,omitempty" yaml:"research_groups,omitempty"`
	Theses         *ThesesOutput         `json:"theses,omitempty" yaml:"theses,omitempty"`
	Patents        *PatentsOutput        `json:"patents,omitempty" yaml:"patents,omitempty"`
	VerifiedClaims *VerifiedClaimsOutput `json:"verified_claims,omitempty" yaml:"verified_claims,omitempty"`
}

// Advance moves the entry state forward to s if s is further along.
// Re-running an earlier stage never regresses the state.
func (e *Entry) Advance(s EntryState) {
	if stateRank[s] > stateRank[e.State] {
		e.State = s
	}
}

// StructuredCount returns how many structured records the given stage has
// produced on this entry, or -1 when the stage has not run. Dependency
// gating treats zero records the same as a missing stage.
func (e *Entry) StructuredCount(stage Stage) int {
	switch stage {
	case StageClaims:
		if e.ClaimsAnalysis == nil {
			return -1
		}
		return len(e.ClaimsAnalysis.Claims)
	case StageSimilarPapers:
		if e.SimilarPapers == nil {
			return -1
		}
		return len(e.SimilarPapers.Papers)
	case StageResearchGroups:
		if e.ResearchGroups == nil {
			return -1
		}
		return len(e.ResearchGroups.Groups)
	case StageTheses, StageThesisDeepDive:
		if e.Theses == nil {
			return -1
		}
		return len(e.Theses.Records)
	case StagePatents:
		if e.Patents == nil {
			return -1
		}
		return len(e.Patents.Patents)
	case StageVerifiedClaims:
		if e.VerifiedClaims == nil {
			return -1
		}
		return len(e.VerifiedClaims.Claims)
	default:
		return -1
	}
}

// HasStructured reports whether the stage has a non-empty structured output
// on this entry.
func (e *Entry) HasStructured(stage Stage) bool {
	return e.StructuredCount(stage) > 0
}
