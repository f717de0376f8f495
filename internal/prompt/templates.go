// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"strings"
	"text/template"
)

// tmplFuncs are helpers shared by the discovery templates. Pointer fields
// print through deref so a nil renders as nothing rather than an address.
var tmplFuncs = template.FuncMap{
	"join": strings.Join,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Discovery templates render upstream structured data into an open-ended
// research task. The discovery call may use live external search; output is
// free text. Per prd002-prompts R1.

var claimsDiscoveryTmpl = template.Must(template.New("claims-discovery").Funcs(tmplFuncs).Parse(`You are a research claims analyst. Read the following paper and identify its central factual claims.

For each claim, work out:
- a short identifier (C1, C2, ...)
- the claim itself, in the paper's own language
- the in-paper evidence supporting it, and the key numbers involved
- where in the paper it appears (section, table, or figure)
- how strongly the paper's own data supports it: High, Moderate, Low, or Unclear
- the unstated assumptions it depends on
- the type of evidence (experimental, simulation, observational, theoretical)

Title: {{.Title}}
Authors: {{.AuthorLine}}
{{if .DOI}}DOI: {{.DOI}}
{{end}}
Paper text:
{{.DocText}}
`))

var similarPapersDiscoveryTmpl = template.Must(template.New("similar-papers-discovery").Funcs(tmplFuncs).Parse(`You are a literature-search specialist. Find published papers methodologically similar to the source paper described below. Search for work sharing its methods, materials, or measured outcomes.

For each similar paper (up to 5), report:
- identifier (DOI preferred, else arXiv ID or URL)
- title, authors, year, venue
- why it is relevant to the source paper
- exactly three shared methodological elements
- a method comparison across: sample, materials, equipment, procedure, outcomes
- gaps: what it does not cover relative to the source paper

Source paper: {{.Title}} ({{.AuthorLine}})
{{if .DOI}}DOI: {{.DOI}}
{{end}}
Claims under investigation:
{{range .Claims}}{{.ID}} [{{.Strength}}]: {{.Claim}}
{{end}}`))

var researchGroupsDiscoveryTmpl = template.Must(template.New("research-groups-discovery").Funcs(tmplFuncs).Parse(`You are a research-community mapper. Identify active research groups and author contacts working on the methods below. Search group pages, recent publications, and public profiles.

For each group (up to 6), report:
- group or lab name, institution, research focus
- reachable members: name, email, role, ORCID, public profiles with URLs

Source paper: {{.Title}}

Similar papers already identified:
{{range .Papers}}- {{.Title}}{{if .Authors}} ({{join .Authors ", "}}){{end}}{{if .Year}} [{{.Year}}]{{end}}
{{end}}`))

var thesesDiscoveryTmpl = template.Must(template.New("theses-discovery").Funcs(tmplFuncs).Parse(`You are an academic-records researcher. For the researchers in the groups below, locate each person's latest publication and PhD thesis, and determine whether their data or code is public.

For each researcher, report:
- name, email if public
- latest publication: title, year, venue, URL
- PhD thesis: title, year, institution, URL (or state that none was found)
- data availability: yes, no, or unknown

Source paper: {{.Title}}

Research groups:
{{range .Groups}}- {{.Name}}{{if .Institution}} ({{deref .Institution}}){{end}}{{range .Contacts}}
    contact: {{.Name}}{{end}}
{{end}}`))

var patentsDiscoveryTmpl = template.Must(template.New("patents-discovery").Funcs(tmplFuncs).Parse(`You are a prior-art analyst. Search for granted patents and applications whose claims overlap the source paper's claims below.

For each patent (up to 6), report:
- patent number, title, assignee
- filing date and grant date
- abstract
- which source-paper claim IDs it overlaps with, and a summary of the overlap
- a URL to the patent record

Source paper: {{.Title}}
{{if .DOI}}DOI: {{.DOI}}
{{end}}
Claims under investigation:
{{range .Claims}}{{.ID}} [{{.Strength}}]: {{.Claim}}
{{end}}`))

var verifiedClaimsDiscoveryTmpl = template.Must(template.New("verified-claims-discovery").Funcs(tmplFuncs).Parse(`You are an evidence cross-validator. For each source-paper claim below, weigh the gathered evidence and reach a verdict: Verified, PartiallyVerified, Contradicted, or InsufficientEvidence.

Rules:
- cite each piece of evidence by its stage of origin: SimilarPaper, ResearchGroup, Patent, or Thesis
- separate supporting from contradicting evidence
- High confidence requires 3+ independent sources, no contradictions, and public data or code; otherwise use Moderate or Low
- when in doubt, prefer the weaker verdict

Claims:
{{range .Claims}}{{.ID}} [{{.Strength}}]: {{.Claim}}
{{end}}
Similar papers:
{{range .Papers}}- {{.Title}}{{if .Year}} [{{.Year}}]{{end}}{{if .Identifier}} ({{.Identifier}}){{end}}
{{end}}
Research groups:
{{range .Groups}}- {{.Name}}
{{end}}
Patents:
{{range .Patents}}- {{.PatentNumber}}: {{.Title}}
{{end}}
Theses:
{{range .Theses}}- {{.Name}}{{if .PhDThesis}}: {{.PhDThesis.Title}}{{end}}
{{end}}`))

var thesisDeepDiveDiscoveryTmpl = template.Must(template.New("thesis-deep-dive-discovery").Funcs(tmplFuncs).Parse(`You are an academic-records researcher doing a focused pass on one research group. For every member of the group below, locate their latest publication and PhD thesis in depth: follow institutional repositories, supervisor pages, and thesis databases.

Group: {{.Group.Name}}{{if .Group.Institution}} ({{deref .Group.Institution}}){{end}}
Members:
{{range .Group.Contacts}}- {{.Name}}{{if .Role}} ({{deref .Role}}){{end}}
{{end}}
Report per member: name, email, latest publication (title, year, venue, URL), PhD thesis (title, year, institution, URL), and data availability.`))

// cleanupDivider separates the conversion instructions from the embedded
// discovery output.
const cleanupDivider = "----- DISCOVERY NOTES (verbatim) -----"

// cleanupPreamble opens every cleanup prompt. Cleanup is a strict
// schema-conversion task over already-supplied text; it must not search or
// invent new facts.
const cleanupPreamble = `You are a strict data-structuring system. Convert the discovery notes below the divider into a single JSON object matching the schema exactly. Use only information present in the notes; do not add, infer, or search for anything new. For any value the notes do not state, use null for scalars and [] for arrays.

Respond with JSON only: no markdown fences, no commentary, no text outside the JSON object.`

// cleanupSchemas spells out the target schema field-by-field per stage.
var cleanupSchemas = map[string]string{
	"claims": `{"claims": [{
  "id": string,                 // "C1", "C2", ...
  "claim": string,
  "evidence_summary": string,
  "key_numbers": [string],
  "source": string,             // section / table / figure
  "strength": "High" | "Moderate" | "Low" | "Unclear",
  "assumptions": string,
  "evidence_type": string
}]}`,

	"similar-papers": `{"papers": [{
  "identifier": string,         // DOI, arXiv ID, or URL; "" if none
  "title": string,
  "authors": [string],
  "year": number | null,
  "venue": string | null,
  "why_relevant": string,
  "method_overlap": [string],   // exactly 3 elements
  "method_comparison": {"sample": string, "materials": string, "equipment": string, "procedure": string, "outcomes": string},
  "gaps": string | null
}]}`,

	"research-groups": `{"groups": [{
  "name": string,
  "institution": string | null,
  "focus": string | null,
  "contacts": [{
    "name": string,
    "email": string | null,
    "role": string | null,
    "orcid": string | null,
    "profiles": [{"platform": string, "url": string}]
  }]
}]}`,

	"theses": `{"records": [{
  "name": string,
  "email": string | null,
  "latest_publication": {"title": string, "year": number | null, "venue": string, "url": string | null},
  "phd_thesis": {"title": string, "year": number | null, "institution": string, "url": string | null} | null,
  "data_availability": "yes" | "no" | "unknown"
}]}`,

	"patents": `{"patents": [{
  "patent_number": string,
  "title": string,
  "assignee": string | null,
  "filing_date": string | null,
  "grant_date": string | null,
  "abstract": string | null,
  "overlap_with_paper": {"claim_ids": [string], "summary": string},
  "url": string
}]}`,

	"verified-claims": `{"claims": [{
  "claim_id": string,
  "original_claim": string,
  "verification_status": "Verified" | "PartiallyVerified" | "Contradicted" | "InsufficientEvidence",
  "supporting_evidence": [{"source": "SimilarPaper" | "ResearchGroup" | "Patent" | "Thesis", "title": string, "relevance": string}],
  "contradicting_evidence": [{"source": "SimilarPaper" | "ResearchGroup" | "Patent" | "Thesis", "title": string, "relevance": string}],
  "verification_summary": string,
  "confidence_level": "High" | "Moderate" | "Low"
}]}`,
}
