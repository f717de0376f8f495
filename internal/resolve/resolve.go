// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve matches records describing the same paper or person
// across stage outputs generated independently. Implements:
// prd006-resolution (R1-R4);
//
//	docs/ARCHITECTURE § Entity Resolution.
//
// Stage outputs are produced by separate generation calls and format
// identifiers inconsistently; resolution happens on canonical forms: a
// normalized DOI when one can be extracted, else a normalized title.
package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// doiPattern matches a DOI-shaped token anywhere in a string:
// "10.1145/1234567.1234568", "doi:10.1038/xyz", "https://doi.org/10.1038/xyz".
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s"'<>]+`)

// NormalizeDOI extracts a DOI-shaped token from raw and canonicalizes it:
// trailing punctuation trimmed, lower-cased. Returns "" when no DOI is
// present.
func NormalizeDOI(raw string) string {
	m := doiPattern.FindString(raw)
	if m == "" {
		return ""
	}
	m = strings.TrimRight(m, ".,;:)]}")
	return strings.ToLower(m)
}

// NormalizeTitle returns a lowercased, punctuation-stripped,
// whitespace-collapsed version of the title.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Match identifies a resolved corpus member.
type Match struct {
	// Kind is "source" for the source document, "paper" for a similar
	// paper.
	Kind string

	// Index is the similar-papers index for Kind "paper", -1 otherwise.
	Index int

	// Paper is the matched similar paper, nil for the source document.
	Paper *types.SimilarPaper
}

// Index holds lookup tables over the already-known corpus: the source
// document plus the entry's similar papers.
type Index struct {
	byDOI   map[string]Match
	byTitle map[string]Match
}

// NewIndex builds the by-DOI and by-title indices. Later corpus members
// never displace earlier ones, so resolution is deterministic regardless
// of how many stages re-mention the same paper.
func NewIndex(source types.SourceRef, papers []types.SimilarPaper) *Index {
	idx := &Index{
		byDOI:   make(map[string]Match),
		byTitle: make(map[string]Match),
	}

	idx.add(NormalizeDOI(source.DOI), NormalizeTitle(source.Title), Match{Kind: "source", Index: -1})

	for i := range papers {
		p := &papers[i]
		m := Match{Kind: "paper", Index: i, Paper: p}
		idx.add(NormalizeDOI(p.Identifier), NormalizeTitle(p.Title), m)
	}

	return idx
}

func (idx *Index) add(doi, title string, m Match) {
	if doi != "" {
		if _, exists := idx.byDOI[doi]; !exists {
			idx.byDOI[doi] = m
		}
	}
	if title != "" {
		if _, exists := idx.byTitle[title]; !exists {
			idx.byTitle[title] = m
		}
	}
}

// Resolve matches a (title, identifier) pair against the corpus. Order:
// DOI match, then title match, then unresolved (ok=false). An unresolved
// record is kept as-is by callers and inherits no earlier-stage metadata.
func (idx *Index) Resolve(title, identifier string) (Match, bool) {
	if doi := NormalizeDOI(identifier); doi != "" {
		if m, ok := idx.byDOI[doi]; ok {
			return m, true
		}
	}
	if t := NormalizeTitle(title); t != "" {
		if m, ok := idx.byTitle[t]; ok {
			return m, true
		}
	}
	return Match{}, false
}

// EnrichEvidence fills metadata an evidence item title can inherit from
// the corpus: when the title resolves to a known similar paper, the
// canonical paper title replaces the stage's variant spelling. Unresolved
// items are returned unchanged.
func (idx *Index) EnrichEvidence(items []types.EvidenceItem) []types.EvidenceItem {
	for i, item := range items {
		if item.Source != types.SourceSimilarPaper {
			continue
		}
		if m, ok := idx.Resolve(item.Title, item.Title); ok && m.Paper != nil {
			items[i].Title = m.Paper.Title
		}
	}
	return items
}
