// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders upstream structured data and task rules into text
// prompts for the generation service. Implements: prd002-prompts (R1-R4);
//
//	docs/ARCHITECTURE § Prompt Builder.
//
// Each stage has a discovery variant (open-ended research, free-text
// output, search-augmented) and a cleanup variant (strict schema
// conversion of the discovery text, no search). A builder never emits a
// degraded prompt: when required upstream data is absent it returns a
// MissingDependencyError naming the absent stage.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Collection caps applied before rendering, to bound prompt size.
// Truncation is deterministic: stable first-N.
const (
	maxClaims           = 8
	maxSimilarPapers    = 5
	maxAuthorsPerPaper  = 3
	maxGroups           = 6
	maxContactsPerGroup = 4
	maxTheses           = 4
	maxPatents          = 6

	// maxDocChars caps the embedded source-document text.
	maxDocChars = 24000
)

// Prompt is a rendered prompt plus the truncation notes recorded while
// rendering it. Notes are persisted as the stage's promptNotes.
type Prompt struct {
	Text  string
	Notes []string
}

func render(tmpl *template.Template, data any, notes []string) (Prompt, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return Prompt{Text: buf.String(), Notes: notes}, nil
}

// capN truncates a slice to n, appending a note when anything was cut.
func capN[T any](items []T, n int, label string, notes *[]string) []T {
	if len(items) <= n {
		return items
	}
	*notes = append(*notes, fmt.Sprintf("%s truncated to %d of %d", label, n, len(items)))
	return items[:n]
}

// ClaimsDiscovery renders the claims-stage discovery prompt from the
// source document's extracted text.
func ClaimsDiscovery(source types.SourceRef, docText string) (Prompt, error) {
	if docText == "" {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StageClaims, Requires: types.StageSource}
	}

	var notes []string
	if len(docText) > maxDocChars {
		notes = append(notes, fmt.Sprintf("source text truncated to %d of %d characters", maxDocChars, len(docText)))
		docText = docText[:maxDocChars]
	}

	return render(claimsDiscoveryTmpl, struct {
		types.SourceRef
		DocText string
	}{source, docText}, notes)
}

// SimilarPapersDiscovery renders the similar-papers discovery prompt from
// the entry's claims.
func SimilarPapersDiscovery(source types.SourceRef, claims []types.Claim) (Prompt, error) {
	if len(claims) == 0 {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StageSimilarPapers, Requires: types.StageClaims}
	}

	var notes []string
	claims = capN(claims, maxClaims, "claims", &notes)

	return render(similarPapersDiscoveryTmpl, struct {
		types.SourceRef
		Claims []types.Claim
	}{source, claims}, notes)
}

// ResearchGroupsDiscovery renders the research-groups discovery prompt
// from the entry's similar papers.
func ResearchGroupsDiscovery(source types.SourceRef, papers []types.SimilarPaper) (Prompt, error) {
	if len(papers) == 0 {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StageResearchGroups, Requires: types.StageSimilarPapers}
	}

	var notes []string
	papers = capN(papers, maxSimilarPapers, "similar papers", &notes)

	capped := make([]types.SimilarPaper, len(papers))
	for i, p := range papers {
		capped[i] = p
		capped[i].Authors = capN(p.Authors, maxAuthorsPerPaper, fmt.Sprintf("authors of %q", p.Title), &notes)
	}

	return render(researchGroupsDiscoveryTmpl, struct {
		types.SourceRef
		Papers []types.SimilarPaper
	}{source, capped}, notes)
}

// ThesesDiscovery renders the theses discovery prompt from the entry's
// research groups.
func ThesesDiscovery(source types.SourceRef, groups []types.ResearchGroup) (Prompt, error) {
	if len(groups) == 0 {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StageTheses, Requires: types.StageResearchGroups}
	}

	var notes []string
	groups = capN(groups, maxGroups, "research groups", &notes)

	capped := make([]types.ResearchGroup, len(groups))
	for i, g := range groups {
		capped[i] = g
		capped[i].Contacts = capN(g.Contacts, maxContactsPerGroup, fmt.Sprintf("contacts of %q", g.Name), &notes)
	}

	return render(thesesDiscoveryTmpl, struct {
		types.SourceRef
		Groups []types.ResearchGroup
	}{source, capped}, notes)
}

// PatentsDiscovery renders the patents discovery prompt from the entry's
// claims.
func PatentsDiscovery(source types.SourceRef, claims []types.Claim) (Prompt, error) {
	if len(claims) == 0 {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StagePatents, Requires: types.StageClaims}
	}

	var notes []string
	claims = capN(claims, maxClaims, "claims", &notes)

	return render(patentsDiscoveryTmpl, struct {
		types.SourceRef
		Claims []types.Claim
	}{source, claims}, notes)
}

// VerifiedClaimsDiscovery renders the cross-validation discovery prompt
// from every earlier stage's structured output.
func VerifiedClaimsDiscovery(source types.SourceRef, claims []types.Claim, papers []types.SimilarPaper, groups []types.ResearchGroup, patents []types.Patent, theses []types.ThesisRecord) (Prompt, error) {
	if len(claims) == 0 {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StageVerifiedClaims, Requires: types.StageClaims}
	}

	var notes []string
	claims = capN(claims, maxClaims, "claims", &notes)
	papers = capN(papers, maxSimilarPapers, "similar papers", &notes)
	groups = capN(groups, maxGroups, "research groups", &notes)
	patents = capN(patents, maxPatents, "patents", &notes)
	theses = capN(theses, maxTheses, "thesis records", &notes)

	return render(verifiedClaimsDiscoveryTmpl, struct {
		types.SourceRef
		Claims  []types.Claim
		Papers  []types.SimilarPaper
		Groups  []types.ResearchGroup
		Patents []types.Patent
		Theses  []types.ThesisRecord
	}{source, claims, papers, groups, patents, theses}, notes)
}

// ThesisDeepDiveDiscovery renders the per-group deep-dive prompt.
func ThesisDeepDiveDiscovery(source types.SourceRef, group types.ResearchGroup) (Prompt, error) {
	if group.Name == "" {
		return Prompt{}, &types.MissingDependencyError{Stage: types.StageThesisDeepDive, Requires: types.StageResearchGroups}
	}

	var notes []string
	group.Contacts = capN(group.Contacts, maxContactsPerGroup, fmt.Sprintf("contacts of %q", group.Name), &notes)

	return render(thesisDeepDiveDiscoveryTmpl, struct {
		types.SourceRef
		Group types.ResearchGroup
	}{source, group}, notes)
}

// Cleanup renders the schema-conversion prompt for a stage, embedding the
// discovery output verbatim below an explicit divider. The deep-dive stage
// converts to the theses schema.
func Cleanup(stage types.Stage, discoveryText string) (Prompt, error) {
	if discoveryText == "" {
		return Prompt{}, &types.MissingDependencyError{Stage: stage, Requires: stage}
	}

	schemaStage := stage
	if stage == types.StageThesisDeepDive {
		schemaStage = types.StageTheses
	}
	schema, ok := cleanupSchemas[string(schemaStage)]
	if !ok {
		return Prompt{}, fmt.Errorf("no cleanup schema for stage %s", stage)
	}

	text := fmt.Sprintf("%s\n\nTarget schema:\n%s\n\n%s\n%s\n",
		cleanupPreamble, schema, cleanupDivider, discoveryText)
	return Prompt{Text: text}, nil
}
