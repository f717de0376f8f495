// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- enum folding ---

func TestStrengthFolding(t *testing.T) {
	tests := []struct {
		in   string
		want types.Strength
	}{
		{"High", types.StrengthHigh},
		{"STRONG", types.StrengthHigh},
		{"medium", types.StrengthModerate},
		{"Moderate", types.StrengthModerate},
		{"weak", types.StrengthLow},
		{"low", types.StrengthLow},
		{"unclear", types.StrengthUnclear},
		{"somewhat plausible", types.StrengthUnclear},
		{"", types.StrengthUnclear},
	}
	for _, tt := range tests {
		if got := Strength(tt.in); got != tt.want {
			t.Errorf("Strength(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusFolding(t *testing.T) {
	tests := []struct {
		in   string
		want types.VerificationStatus
	}{
		{"Verified", types.StatusVerified},
		{"partially verified", types.StatusPartiallyVerified},
		{"Partially-Verified", types.StatusPartiallyVerified},
		{"CONTRADICTED", types.StatusContradicted},
		{"refuted", types.StatusContradicted},
		{"insufficient evidence", types.StatusInsufficientEvidence},
		{"no idea", types.StatusInsufficientEvidence},
		{"", types.StatusInsufficientEvidence},
	}
	for _, tt := range tests {
		if got := Status(tt.in); got != tt.want {
			t.Errorf("Status(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfidenceFolding(t *testing.T) {
	tests := []struct {
		in   string
		want types.ConfidenceLevel
	}{
		{"High", types.ConfidenceHigh},
		{"medium", types.ConfidenceModerate},
		{"Low", types.ConfidenceLow},
		{"absolutely certain", types.ConfidenceLow},
		{"", types.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := Confidence(tt.in); got != tt.want {
			t.Errorf("Confidence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAvailabilityFolding(t *testing.T) {
	tests := []struct {
		in   string
		want types.DataAvailability
	}{
		{"yes", types.AvailabilityYes},
		{"Public", types.AvailabilityYes},
		{"no", types.AvailabilityNo},
		{"private", types.AvailabilityNo},
		{"maybe", types.AvailabilityUnknown},
		{"", types.AvailabilityUnknown},
	}
	for _, tt := range tests {
		if got := Availability(tt.in); got != tt.want {
			t.Errorf("Availability(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- cleaners ---

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"bare", "https://example.org/p", "https://example.org/p", true},
		{"markdown link", "[paper](https://example.org/p)", "https://example.org/p", true},
		{"footnote bracket", "[1]: https://example.org/p.", "https://example.org/p", true},
		{"angle brackets", "<https://example.org/p>", "https://example.org/p", true},
		{"trailing punctuation", "see https://example.org/p.", "https://example.org/p", true},
		{"http rejected", "http://example.org/p", "", false},
		{"no url", "no link reported", "", false},
		{"scheme only", "https://", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := CleanURL(tt.in)
			if valid != tt.valid || got != tt.want {
				t.Errorf("CleanURL(%q) = (%q, %v), want (%q, %v)", tt.in, got, valid, tt.want, tt.valid)
			}
		})
	}
}

func TestCleanEmail(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"plain", "a@x.edu", "a@x.edu", true},
		{"upper-cased", "A@X.EDU", "a@x.edu", true},
		{"mailto", "mailto:a@x.edu", "a@x.edu", true},
		{"markdown mailto", "[a@x.edu](mailto:a@x.edu)", "a@x.edu", true},
		{"not an email", "contact the lab", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := CleanEmail(tt.in)
			if valid != tt.valid || got != tt.want {
				t.Errorf("CleanEmail(%q) = (%q, %v), want (%q, %v)", tt.in, got, valid, tt.want, tt.valid)
			}
		})
	}
}

// --- claims ---

func TestClaims(t *testing.T) {
	data := []byte(`{"claims": [
		{"id": "C1", "claim": "A", "strength": "High", "key_numbers": ["42%"]},
		{"id": "C1", "claim": "B", "strength": "medium"},
		{"id": "", "claim": "C", "strength": "mystery"},
		{"id": "", "claim": ""}
	]}`)

	claims, err := Claims(data)
	if err != nil {
		t.Fatalf("Claims() error: %v", err)
	}
	if len(claims) != 3 {
		t.Fatalf("len(claims) = %d, want 3 (placeholder dropped)", len(claims))
	}

	// Duplicate and missing IDs are reassigned, uniqueness holds.
	seen := map[string]bool{}
	for _, c := range claims {
		if seen[c.ID] {
			t.Errorf("duplicate claim id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if claims[0].Strength != types.StrengthHigh {
		t.Errorf("claims[0].Strength = %q, want High", claims[0].Strength)
	}
	if claims[1].Strength != types.StrengthModerate {
		t.Errorf("claims[1].Strength = %q, want Moderate", claims[1].Strength)
	}
	if claims[2].Strength != types.StrengthUnclear {
		t.Errorf("claims[2].Strength = %q, want Unclear", claims[2].Strength)
	}
	if len(claims[1].KeyNumbers) != 0 {
		t.Errorf("missing key_numbers should normalize to empty, got %v", claims[1].KeyNumbers)
	}
}

func TestClaimsBareArray(t *testing.T) {
	claims, err := Claims([]byte(`[{"id": "C1", "claim": "A"}]`))
	if err != nil {
		t.Fatalf("Claims() error: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("len(claims) = %d, want 1", len(claims))
	}
}

func TestClaimsSchemaViolation(t *testing.T) {
	if _, err := Claims([]byte(`{"items": []}`)); err == nil {
		t.Fatal("expected schema violation for missing claims key")
	}
	if _, err := Claims([]byte(`"just a string"`)); err == nil {
		t.Fatal("expected schema violation for non-object top level")
	}
	if _, err := Claims([]byte(`{not json`)); err == nil {
		t.Fatal("expected malformed error for invalid JSON")
	}
}

// --- similar papers ---

func TestSimilarPapers(t *testing.T) {
	data := []byte(`{"papers": [
		{"title": "P1", "year": 2021, "venue": "Nature", "method_overlap": ["a", "b", "c", "d"]},
		{"title": "P2", "year": "unknown", "venue": null, "method_overlap": ["a"]},
		{"identifier": "", "title": ""}
	]}`)

	papers, err := SimilarPapers(data)
	if err != nil {
		t.Fatalf("SimilarPapers() error: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2 (titleless dropped)", len(papers))
	}

	if papers[0].Year == nil || *papers[0].Year != 2021 {
		t.Errorf("papers[0].Year = %v, want 2021", papers[0].Year)
	}
	if len(papers[0].MethodOverlap) != 3 {
		t.Errorf("method_overlap truncates to 3, got %d", len(papers[0].MethodOverlap))
	}

	if papers[1].Year != nil {
		t.Errorf("papers[1].Year = %v, want nil for unreported year", *papers[1].Year)
	}
	if papers[1].Venue != nil {
		t.Errorf("papers[1].Venue = %v, want nil", *papers[1].Venue)
	}
	if len(papers[1].MethodOverlap) != 3 {
		t.Errorf("method_overlap pads to 3, got %d", len(papers[1].MethodOverlap))
	}
}

// --- research groups ---

func TestResearchGroups(t *testing.T) {
	data := []byte(`{"groups": [
		{"name": "G1", "institution": "MIT", "contacts": [
			{"name": "A", "email": "[a@x.edu](mailto:a@x.edu)"},
			{"name": "", "email": "b@x.edu"}
		]},
		{"name": "G2", "institution": "unknown", "contacts": []},
		{"name": ""}
	]}`)

	groups, err := ResearchGroups(data)
	if err != nil {
		t.Fatalf("ResearchGroups() error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}

	if len(groups[0].Contacts) != 1 {
		t.Fatalf("nameless contact should drop, got %d contacts", len(groups[0].Contacts))
	}
	c := groups[0].Contacts[0]
	if c.Email == nil || *c.Email != "a@x.edu" {
		t.Errorf("contact email = %v, want a@x.edu", c.Email)
	}

	if groups[1].Institution != nil {
		t.Errorf("unknown institution should normalize to nil, got %v", *groups[1].Institution)
	}
}

// --- theses ---

func TestTheses(t *testing.T) {
	data := []byte(`{"records": [
		{"name": "A", "data_availability": "public",
		 "latest_publication": {"title": "T", "year": 2023, "venue": "V", "url": "https://x.org/t"},
		 "phd_thesis": {"title": "Th", "year": 2019, "institution": "U", "url": "no link found"}},
		{"name": "B", "data_availability": "who knows", "phd_thesis": {}}
	]}`)

	records, err := Theses(data)
	if err != nil {
		t.Fatalf("Theses() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	if records[0].DataAvailability != types.AvailabilityYes {
		t.Errorf("availability = %q, want yes", records[0].DataAvailability)
	}
	if records[0].PhDThesis == nil {
		t.Fatal("thesis with fields should survive")
	}
	if records[0].PhDThesis.URL != nil {
		t.Errorf("unresolvable thesis url should be nil, got %v", *records[0].PhDThesis.URL)
	}

	if records[1].DataAvailability != types.AvailabilityUnknown {
		t.Errorf("availability = %q, want unknown", records[1].DataAvailability)
	}
	if records[1].PhDThesis != nil {
		t.Error("empty thesis block should collapse to nil")
	}
}

// --- patents ---

func TestPatents(t *testing.T) {
	data := []byte(`{"patents": [
		{"patent_number": "US7654321", "title": "P", "assignee": null,
		 "url": "[link](https://patents.google.com/patent/US7654321)",
		 "overlap_with_paper": {"claim_ids": ["C1"], "summary": "s"}},
		{"title": "no number"}
	]}`)

	patents, err := Patents(data)
	if err != nil {
		t.Fatalf("Patents() error: %v", err)
	}
	if len(patents) != 1 {
		t.Fatalf("len(patents) = %d, want 1 (numberless dropped)", len(patents))
	}

	p := patents[0]
	if p.Assignee != nil {
		t.Errorf("assignee = %v, want nil", *p.Assignee)
	}
	if p.URL != "https://patents.google.com/patent/US7654321" {
		t.Errorf("url = %q", p.URL)
	}
	if !reflect.DeepEqual(p.OverlapWithPaper.ClaimIDs, []string{"C1"}) {
		t.Errorf("claim_ids = %v", p.OverlapWithPaper.ClaimIDs)
	}
}

// --- verified claims ---

func TestVerifiedClaims(t *testing.T) {
	data := []byte(`{"claims": [
		{"claim_id": "C1", "original_claim": "A",
		 "verification_status": "partially verified", "confidence_level": "Moderate",
		 "supporting_evidence": [
			{"source": "SimilarPaper", "title": "P1", "relevance": "same method"},
			{"source": "rumor", "title": "bad"},
			{"source": "Patent", "title": ""}
		 ],
		 "contradicting_evidence": []},
		{"claim_id": "", "original_claim": "dropped"}
	]}`)

	verified, err := VerifiedClaims(data)
	if err != nil {
		t.Fatalf("VerifiedClaims() error: %v", err)
	}
	if len(verified) != 1 {
		t.Fatalf("len(verified) = %d, want 1", len(verified))
	}

	v := verified[0]
	if v.VerificationStatus != types.StatusPartiallyVerified {
		t.Errorf("status = %q, want PartiallyVerified", v.VerificationStatus)
	}
	if v.ConfidenceLevel != types.ConfidenceModerate {
		t.Errorf("confidence = %q, want Moderate", v.ConfidenceLevel)
	}
	if len(v.SupportingEvidence) != 1 {
		t.Fatalf("unrecognized-source and titleless evidence should drop, got %d", len(v.SupportingEvidence))
	}
	if v.SupportingEvidence[0].Source != types.SourceSimilarPaper {
		t.Errorf("evidence source = %q", v.SupportingEvidence[0].Source)
	}
	if len(v.ContradictingEvidence) != 0 {
		t.Errorf("contradicting = %d, want 0", len(v.ContradictingEvidence))
	}
}

// --- idempotence and round-trip ---

func TestNormalizerIdempotence(t *testing.T) {
	data := []byte(`{"claims": [
		{"id": "C1", "claim": "A", "strength": "strong", "key_numbers": ["1"]},
		{"id": "C2", "claim": "B", "strength": "weak"}
	]}`)

	first, err := Claims(data)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	reserialized, err := json.Marshal(map[string]any{"claims": first})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	second, err := Claims(reserialized)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalizer is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRoundTrip(t *testing.T) {
	data := []byte(`{"papers": [
		{"title": "P1", "year": 2021, "venue": "V", "authors": ["A"],
		 "method_overlap": ["a", "b", "c"],
		 "method_comparison": {"sample": "s", "materials": "m", "equipment": "e", "procedure": "p", "outcomes": "o"}}
	]}`)

	papers, err := SimilarPapers(data)
	if err != nil {
		t.Fatalf("SimilarPapers() error: %v", err)
	}

	out, err := json.Marshal(papers)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back []types.SimilarPaper
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(papers, back) {
		t.Errorf("round trip mismatch:\nout:  %+v\nback: %+v", papers, back)
	}
}
