// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonrepair

import (
	"encoding/json"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"plain fences", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json fences", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose trimmed by caller", "```json\n[]\n```", "[]"},
		{"opening fence only", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"surrounding whitespace", "  \n```\n{}\n```\n  ", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairTypographicPunctuation(t *testing.T) {
	in := "{“title”: “A — B …”}"
	got := Repair(in)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, got)
	}
	if parsed["title"] != "A - B ..." {
		t.Errorf("title = %q, want %q", parsed["title"], "A - B ...")
	}
}

func TestRepairZeroWidthCharacters(t *testing.T) {
	in := "{\"a\":\u00a0\"b\u200bc\"}"
	got := Repair(in)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, got)
	}
	if parsed["a"] != "bc" {
		t.Errorf("a = %q, want %q", parsed["a"], "bc")
	}
}

func TestRepairByteOrderMark(t *testing.T) {
	in := "\ufeff{\"a\": \"b\u00a0c\"}"
	got := Repair(in)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, got)
	}
	if parsed["a"] != "b c" {
		t.Errorf("a = %q, want %q", parsed["a"], "b c")
	}
}

func TestEscapeInteriorQuotes(t *testing.T) {
	in := `{"summary": "uses "X" here"}`
	got := EscapeInteriorQuotes(in)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, got)
	}
	if want := `uses "X" here`; parsed["summary"] != want {
		t.Errorf("summary = %q, want %q", parsed["summary"], want)
	}
}

func TestEscapeInteriorQuotesLeavesValidJSONAlone(t *testing.T) {
	cases := []string{
		`{"a": "b", "c": ["d", "e"]}`,
		`{"a": "already \"escaped\" quotes"}`,
		`{"nested": {"k": "v"}}`,
		`[]`,
		`{"n": 3, "b": true, "x": null}`,
	}
	for _, in := range cases {
		if got := EscapeInteriorQuotes(in); got != in {
			t.Errorf("EscapeInteriorQuotes(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestEscapeInteriorQuotesMultipleValues(t *testing.T) {
	in := `{"a": "say "hi" twice "ok"", "b": "plain"}`
	got := EscapeInteriorQuotes(in)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, got)
	}
	if want := `say "hi" twice "ok"`; parsed["a"] != want {
		t.Errorf("a = %q, want %q", parsed["a"], want)
	}
	if parsed["b"] != "plain" {
		t.Errorf("b = %q, want %q", parsed["b"], "plain")
	}
}

func TestRepairFullSequence(t *testing.T) {
	in := "```json\n{“summary”: \"uses \"X\" here\"}\n```"
	got := Repair(in)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, got)
	}
	if want := `uses "X" here`; parsed["summary"] != want {
		t.Errorf("summary = %q, want %q", parsed["summary"], want)
	}
}
