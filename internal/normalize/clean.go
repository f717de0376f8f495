// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
)

// httpsPattern matches an https URL token. Generated text wraps URLs in
// markdown links, angle brackets, or footnote brackets; the pattern stops
// at the characters those wrappers use.
var httpsPattern = regexp.MustCompile(`https://[^\s<>)\]"']+`)

// emailPattern matches a plain email address after lower-casing.
var emailPattern = regexp.MustCompile(`[a-z0-9][a-z0-9._%+-]*@[a-z0-9.-]+\.[a-z]{2,}`)

// CleanURL extracts the first well-formed https:// token from raw text,
// unwrapping markdown-link syntax and footnote brackets. Anything that does
// not yield an https URL is rejected with ok=false; http and other schemes
// are not accepted.
func CleanURL(raw string) (string, bool) {
	m := httpsPattern.FindString(raw)
	if m == "" {
		return "", false
	}
	// Trailing sentence punctuation is part of the surrounding prose,
	// not the URL.
	m = strings.TrimRight(m, ".,;:!?")
	if m == "https://" || m == "" {
		return "", false
	}
	return m, true
}

// urlPtr runs CleanURL and returns nil on rejection.
func urlPtr(raw string) *string {
	u, ok := CleanURL(raw)
	if !ok {
		return nil
	}
	return &u
}

// CleanEmail lower-cases raw and unwraps mailto: and markdown-link
// wrapping, returning the first plain address found. ok is false when no
// address survives cleaning.
func CleanEmail(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "mailto:", "")

	m := emailPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// emailPtr runs CleanEmail and returns nil on rejection.
func emailPtr(raw string) *string {
	e, ok := CleanEmail(raw)
	if !ok {
		return nil
	}
	return &e
}
