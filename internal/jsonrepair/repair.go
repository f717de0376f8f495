// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonrepair turns near-JSON text from a generation service into
// parseable JSON. Implements: prd004-repair (R1-R3);
//
//	docs/ARCHITECTURE § JSON Repair.
//
// The repair sequence is fence stripping, typographic-punctuation folding,
// then a single left-to-right scan that escapes unescaped quotes inside
// string values. Repair never guarantees validity; callers must still parse
// and fail closed when parsing fails.
package jsonrepair

import "strings"

// asciiFolder replaces typographic punctuation the generation service tends
// to emit with ASCII equivalents (R2).
var asciiFolder = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"–", "-", // en dash
	"—", "-", // em dash
	"…", "...", // ellipsis
	"\u00a0", " ", // non-breaking space
	"\u200b", "", // zero-width space
	"\u200c", "", // zero-width non-joiner
	"\u200d", "", // zero-width joiner
	"\ufeff", "", // byte order mark
)

// Repair applies the full repair sequence: strip code fences, fold
// typographic punctuation to ASCII, then escape interior quotes (R1-R3).
func Repair(text string) string {
	text = StripFences(text)
	text = asciiFolder.Replace(text)
	return EscapeInteriorQuotes(text)
}

// StripFences removes leading and trailing Markdown code-fence markers
// (``` or ```json) around the payload (R1). Text without fences is
// returned trimmed but otherwise unchanged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}

	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	return text
}

// EscapeInteriorQuotes runs a single left-to-right scan maintaining an
// inside-string flag. An unescaped quote met while inside a string closes
// the string only when the next non-whitespace character is one of
// `,`, `}`, `]`, `:` or the input ends; otherwise the quote is an
// unescaped interior quote and an escape is inserted before it (R3).
//
// This repairs the common failure of a generated value containing an
// embedded quoted phrase, e.g. "summary": "uses "X" here".
func EscapeInteriorQuotes(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString && escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}

		switch {
		case inString && c == '\\':
			escaped = true
			b.WriteByte(c)

		case c == '"' && !inString:
			inString = true
			b.WriteByte(c)

		case c == '"' && inString:
			if closesString(text, i+1) {
				inString = false
				b.WriteByte(c)
			} else {
				b.WriteString(`\"`)
			}

		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// closesString reports whether a quote at position i-1 terminates its
// string, judged by the next non-whitespace character.
func closesString(text string, i int) bool {
	for ; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ',', '}', ']', ':':
			return true
		default:
			return false
		}
	}
	// End of input: treat as a closing quote.
	return true
}
