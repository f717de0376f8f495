// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Strength grades how well a claim is supported by the source document.
// Per prd002-claims R1.3. Unrecognized values normalize to StrengthUnclear.
type Strength string

const (
	StrengthHigh     Strength = "High"
	StrengthModerate Strength = "Moderate"
	StrengthLow      Strength = "Low"
	StrengthUnclear  Strength = "Unclear"
)

// VerificationStatus is the verdict for one verified claim.
// Per prd007-verification R2.1. Unrecognized values normalize to
// StatusInsufficientEvidence.
type VerificationStatus string

const (
	StatusVerified             VerificationStatus = "Verified"
	StatusPartiallyVerified    VerificationStatus = "PartiallyVerified"
	StatusContradicted         VerificationStatus = "Contradicted"
	StatusInsufficientEvidence VerificationStatus = "InsufficientEvidence"
)

// ConfidenceLevel grades the verifier's confidence in a verdict.
// Unrecognized values normalize to ConfidenceLow.
type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "High"
	ConfidenceModerate ConfidenceLevel = "Moderate"
	ConfidenceLow      ConfidenceLevel = "Low"
)

// DataAvailability records whether a researcher's data or code is public.
// Unrecognized values normalize to AvailabilityUnknown.
type DataAvailability string

const (
	AvailabilityYes     DataAvailability = "yes"
	AvailabilityNo      DataAvailability = "no"
	AvailabilityUnknown DataAvailability = "unknown"
)

// EvidenceSource identifies which stage produced an evidence item.
type EvidenceSource string

const (
	SourceSimilarPaper  EvidenceSource = "SimilarPaper"
	SourceResearchGroup EvidenceSource = "ResearchGroup"
	SourcePatent        EvidenceSource = "Patent"
	SourceThesis        EvidenceSource = "Thesis"
)

// Claim is one factual assertion extracted from the source document.
// Claim IDs are unique within an entry.
type Claim struct {
	// ID is a short stable label (e.g. "C1") assigned during extraction.
	ID string `json:"id" yaml:"id"`

	// Claim is the assertion in the source document's own language.
	Claim string `json:"claim" yaml:"claim"`

	// EvidenceSummary describes the in-document support for the claim.
	EvidenceSummary string `json:"evidence_summary" yaml:"evidence_summary"`

	// KeyNumbers lists the quantitative values the claim rests on.
	KeyNumbers []string `json:"key_numbers" yaml:"key_numbers"`

	// Source is the document location (section, table, figure) of the claim.
	Source string `json:"source" yaml:"source"`

	// Strength grades the in-document support: High, Moderate, Low, Unclear.
	Strength Strength `json:"strength" yaml:"strength"`

	// Assumptions lists unstated conditions the claim depends on.
	Assumptions string `json:"assumptions" yaml:"assumptions"`

	// EvidenceType categorizes the support (e.g. "experimental", "simulation").
	EvidenceType string `json:"evidence_type" yaml:"evidence_type"`
}

// MethodComparison contrasts a similar paper with the source document along
// five fixed facets.
type MethodComparison struct {
	Sample    string `json:"sample" yaml:"sample"`
	Materials string `json:"materials" yaml:"materials"`
	Equipment string `json:"equipment" yaml:"equipment"`
	Procedure string `json:"procedure" yaml:"procedure"`
	Outcomes  string `json:"outcomes" yaml:"outcomes"`
}

// SimilarPaper is a published work with methodological overlap with the
// source document. Identity field: Title.
type SimilarPaper struct {
	// Identifier is a DOI, arXiv ID, or URL when one was reported.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title. Required after normalization.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, nil when unknown.
	Year *int `json:"year" yaml:"year"`

	// Venue is the journal or conference, nil when unknown.
	Venue *string `json:"venue" yaml:"venue"`

	// WhyRelevant explains the overlap with the source document.
	WhyRelevant string `json:"why_relevant" yaml:"why_relevant"`

	// MethodOverlap lists exactly three shared methodological elements.
	MethodOverlap []string `json:"method_overlap" yaml:"method_overlap"`

	// MethodComparison contrasts the paper with the source document.
	MethodComparison MethodComparison `json:"method_comparison" yaml:"method_comparison"`

	// Gaps notes what the paper does not cover, nil when none reported.
	Gaps *string `json:"gaps" yaml:"gaps"`
}

// Profile is one public research profile for a person.
type Profile struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// PersonContact is a reachable researcher. Identity field: Name.
type PersonContact struct {
	Name     string    `json:"name" yaml:"name"`
	Email    *string   `json:"email" yaml:"email"`
	Role     *string   `json:"role" yaml:"role"`
	ORCID    *string   `json:"orcid" yaml:"orcid"`
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// ResearchGroup is a lab or group working in the source document's area.
// Identity field: Name.
type ResearchGroup struct {
	// Name is the group or lab name.
	Name string `json:"name" yaml:"name"`

	// Institution is the hosting university or company, nil when unknown.
	Institution *string `json:"institution" yaml:"institution"`

	// Focus summarizes the group's research focus, nil when unknown.
	Focus *string `json:"focus" yaml:"focus"`

	// Contacts lists reachable members of the group.
	Contacts []PersonContact `json:"contacts" yaml:"contacts"`
}

// Publication is a single published work reference.
type Publication struct {
	Title string  `json:"title" yaml:"title"`
	Year  *int    `json:"year" yaml:"year"`
	Venue string  `json:"venue" yaml:"venue"`
	URL   *string `json:"url" yaml:"url"`
}

// Thesis is a PhD thesis reference.
type Thesis struct {
	Title       string  `json:"title" yaml:"title"`
	Year        *int    `json:"year" yaml:"year"`
	Institution string  `json:"institution" yaml:"institution"`
	URL         *string `json:"url" yaml:"url"`
}

// ThesisRecord links a researcher to their latest publication and PhD
// thesis. Identity field: Name.
type ThesisRecord struct {
	Name string `json:"name" yaml:"name"`

	Email *string `json:"email" yaml:"email"`

	// LatestPublication is the researcher's most recent published work.
	LatestPublication Publication `json:"latest_publication" yaml:"latest_publication"`

	// PhDThesis is nil when no thesis could be located.
	PhDThesis *Thesis `json:"phd_thesis" yaml:"phd_thesis"`

	// DataAvailability records whether the researcher's data or code is public.
	DataAvailability DataAvailability `json:"data_availability" yaml:"data_availability"`
}

// PatentOverlap maps a patent onto the source document's claims.
type PatentOverlap struct {
	// ClaimIDs lists the entry claim IDs the patent overlaps with.
	ClaimIDs []string `json:"claim_ids" yaml:"claim_ids"`

	// Summary describes the overlap.
	Summary string `json:"summary" yaml:"summary"`
}

// Patent is a granted patent or application with subject overlap.
// Identity field: PatentNumber.
type Patent struct {
	PatentNumber string `json:"patent_number" yaml:"patent_number"`

	Title string `json:"title" yaml:"title"`

	Assignee *string `json:"assignee" yaml:"assignee"`

	// FilingDate and GrantDate are free-form date strings as reported,
	// nil when unknown.
	FilingDate *string `json:"filing_date" yaml:"filing_date"`
	GrantDate  *string `json:"grant_date" yaml:"grant_date"`

	Abstract *string `json:"abstract" yaml:"abstract"`

	// OverlapWithPaper maps the patent onto the entry's claims.
	OverlapWithPaper PatentOverlap `json:"overlap_with_paper" yaml:"overlap_with_paper"`

	URL string `json:"url" yaml:"url"`
}

// EvidenceItem is a single piece of supporting or contradicting evidence
// attached to a verified claim. Title is non-empty after normalization.
type EvidenceItem struct {
	// Source identifies the stage the evidence came from.
	Source EvidenceSource `json:"source" yaml:"source"`

	// Title names the evidencing work or group.
	Title string `json:"title" yaml:"title"`

	// Relevance explains how the evidence bears on the claim. Omitted
	// when the verifier reported none.
	Relevance string `json:"relevance,omitempty" yaml:"relevance,omitempty"`
}

// VerifiedClaim is the cross-validation verdict for one extracted claim.
// Identity field: ClaimID.
type VerifiedClaim struct {
	// ClaimID references a Claim.ID in the same entry.
	ClaimID string `json:"claim_id" yaml:"claim_id"`

	// OriginalClaim restates the claim text being verified.
	OriginalClaim string `json:"original_claim" yaml:"original_claim"`

	// VerificationStatus is the verdict.
	VerificationStatus VerificationStatus `json:"verification_status" yaml:"verification_status"`

	// SupportingEvidence and ContradictingEvidence list the evidence items
	// behind the verdict.
	SupportingEvidence    []EvidenceItem `json:"supporting_evidence" yaml:"supporting_evidence"`
	ContradictingEvidence []EvidenceItem `json:"contradicting_evidence" yaml:"contradicting_evidence"`

	// VerificationSummary explains the verdict.
	VerificationSummary string `json:"verification_summary" yaml:"verification_summary"`

	// ConfidenceLevel grades the verifier's confidence.
	ConfidenceLevel ConfidenceLevel `json:"confidence_level" yaml:"confidence_level"`
}
