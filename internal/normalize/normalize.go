// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts repaired cleanup JSON into schema-typed
// evidence records. Implements: prd005-normalization (R1-R6);
//
//	docs/ARCHITECTURE § Normalization.
//
// Rules applied to every entity: missing or unknown scalar becomes nil,
// missing array becomes empty, enumerated fields are case-folded through an
// alias table onto a fixed closed set with the weakest member as fallback,
// and records lacking all identity fields are dropped rather than kept as
// placeholders. The conservative fallback is deliberate: the system must
// never silently overstate certainty.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// ErrMalformed indicates the input is not parseable JSON even after repair.
var ErrMalformed = errors.New("not valid JSON")

// ErrSchema indicates the input parsed but lacks the required structure.
var ErrSchema = errors.New("schema violation")

// decode unmarshals data and locates the record array: either the value of
// one of the named keys in a top-level object, or a bare top-level array.
func decode(data []byte, keys ...string) ([]any, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch v := root.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range keys {
			if arr, ok := v[key].([]any); ok {
				return arr, nil
			}
		}
		return nil, fmt.Errorf("%w: missing %q key", ErrSchema, keys[0])
	default:
		return nil, fmt.Errorf("%w: expected object or array at top level", ErrSchema)
	}
}

// record wraps one decoded entity with tolerant field accessors. Generated
// JSON routinely carries wrong value types (numbers as strings, strings as
// numbers), so every accessor coerces rather than trusting field presence.
type record map[string]any

func asRecord(v any) (record, bool) {
	m, ok := v.(map[string]any)
	return record(m), ok
}

// str returns the first named field as a trimmed string, or "" when absent.
func (r record) str(keys ...string) string {
	for _, key := range keys {
		switch v := r[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// strPtr returns the first named field as a *string, or nil when absent.
// The strings "null", "none", "unknown", "n/a" and "not found" count as
// absent: the generation service writes them where it found nothing.
func (r record) strPtr(keys ...string) *string {
	s := r.str(keys...)
	if s == "" || isNullWord(s) {
		return nil
	}
	return &s
}

// intPtr returns the first named field as a *int, tolerating numeric
// strings, or nil when absent or non-numeric.
func (r record) intPtr(keys ...string) *int {
	for _, key := range keys {
		switch v := r[key].(type) {
		case float64:
			n := int(v)
			return &n
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return &n
			}
		}
	}
	return nil
}

// strList returns the named field as a []string, coercing scalar elements
// and dropping empties. A missing field yields an empty, non-nil slice.
func (r record) strList(keys ...string) []string {
	out := []string{}
	for _, key := range keys {
		arr, ok := r[key].([]any)
		if !ok {
			continue
		}
		for _, el := range arr {
			var s string
			switch v := el.(type) {
			case string:
				s = strings.TrimSpace(v)
			case float64:
				s = strconv.FormatFloat(v, 'f', -1, 64)
			}
			if s != "" && !isNullWord(s) {
				out = append(out, s)
			}
		}
		break
	}
	return out
}

// list returns the named field as a []any, or nil when absent.
func (r record) list(keys ...string) []any {
	for _, key := range keys {
		if arr, ok := r[key].([]any); ok {
			return arr
		}
	}
	return nil
}

// sub returns the named field as a nested record, or nil when absent.
func (r record) sub(keys ...string) record {
	for _, key := range keys {
		if m, ok := r[key].(map[string]any); ok {
			return record(m)
		}
	}
	return nil
}

// isNullWord reports whether s is a textual stand-in for "no value".
func isNullWord(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "none", "n/a", "na", "unknown", "not found", "not reported", "not available":
		return true
	}
	return false
}

// foldKey canonicalizes an enum value for alias lookup: lower-cased with
// spaces, hyphens and underscores removed.
func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}

// strengthAliases maps folded inputs onto the closed Strength set.
var strengthAliases = map[string]types.Strength{
	"high":     types.StrengthHigh,
	"strong":   types.StrengthHigh,
	"moderate": types.StrengthModerate,
	"medium":   types.StrengthModerate,
	"low":      types.StrengthLow,
	"weak":     types.StrengthLow,
	"unclear":  types.StrengthUnclear,
}

// Strength folds a raw strength value onto the closed set. Anything
// unrecognized falls back to StrengthUnclear.
func Strength(raw string) types.Strength {
	if s, ok := strengthAliases[foldKey(raw)]; ok {
		return s
	}
	return types.StrengthUnclear
}

var statusAliases = map[string]types.VerificationStatus{
	"verified":             types.StatusVerified,
	"confirmed":            types.StatusVerified,
	"partiallyverified":    types.StatusPartiallyVerified,
	"partial":              types.StatusPartiallyVerified,
	"mixed":                types.StatusPartiallyVerified,
	"contradicted":         types.StatusContradicted,
	"refuted":              types.StatusContradicted,
	"disputed":             types.StatusContradicted,
	"insufficientevidence": types.StatusInsufficientEvidence,
	"inconclusive":         types.StatusInsufficientEvidence,
	"unverified":           types.StatusInsufficientEvidence,
}

// Status folds a raw verification status onto the closed set. Anything
// unrecognized falls back to StatusInsufficientEvidence.
func Status(raw string) types.VerificationStatus {
	if s, ok := statusAliases[foldKey(raw)]; ok {
		return s
	}
	return types.StatusInsufficientEvidence
}

var confidenceAliases = map[string]types.ConfidenceLevel{
	"high":     types.ConfidenceHigh,
	"moderate": types.ConfidenceModerate,
	"medium":   types.ConfidenceModerate,
	"low":      types.ConfidenceLow,
}

// Confidence folds a raw confidence level onto the closed set. Anything
// unrecognized falls back to ConfidenceLow.
func Confidence(raw string) types.ConfidenceLevel {
	if c, ok := confidenceAliases[foldKey(raw)]; ok {
		return c
	}
	return types.ConfidenceLow
}

var availabilityAliases = map[string]types.DataAvailability{
	"yes":         types.AvailabilityYes,
	"public":      types.AvailabilityYes,
	"available":   types.AvailabilityYes,
	"open":        types.AvailabilityYes,
	"no":          types.AvailabilityNo,
	"private":     types.AvailabilityNo,
	"unavailable": types.AvailabilityNo,
	"closed":      types.AvailabilityNo,
}

// Availability folds a raw data-availability value onto the closed set.
// Anything unrecognized falls back to AvailabilityUnknown.
func Availability(raw string) types.DataAvailability {
	if a, ok := availabilityAliases[foldKey(raw)]; ok {
		return a
	}
	return types.AvailabilityUnknown
}

var evidenceSourceAliases = map[string]types.EvidenceSource{
	"similarpaper":  types.SourceSimilarPaper,
	"paper":         types.SourceSimilarPaper,
	"publication":   types.SourceSimilarPaper,
	"researchgroup": types.SourceResearchGroup,
	"group":         types.SourceResearchGroup,
	"lab":           types.SourceResearchGroup,
	"patent":        types.SourcePatent,
	"thesis":        types.SourceThesis,
	"dissertation":  types.SourceThesis,
	"phdthesis":     types.SourceThesis,
}

// evidenceSource folds a raw evidence source onto the closed set. The
// second return is false for unrecognized sources; callers drop those
// items rather than guess a provenance.
func evidenceSource(raw string) (types.EvidenceSource, bool) {
	s, ok := evidenceSourceAliases[foldKey(raw)]
	return s, ok
}
