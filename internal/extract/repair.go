package extract

import (
	"encoding/json"
	"strings"
)

// parseJSONLoose unmarshals raw into v, attempting a best-effort string repair
// when the first parse fails. Third-party structured data frequently arrives
// slightly malformed: stray trailing commas, unescaped quotes inside string
// values, or the whole payload wrapped as an escaped string literal.
func parseJSONLoose(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	repaired := repairJSON(raw)
	return json.Unmarshal([]byte(repaired), v)
}

// repairJSON applies the repair steps in order: strip CDATA/comment wrappers,
// collapse escaped string-literal payloads, drop trailing commas, and escape
// quotes that open-coded text left unescaped inside string values.
func repairJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "//<![CDATA[")
	s = strings.TrimSuffix(s, "//]]>")
	s = strings.TrimPrefix(s, "<!--")
	s = strings.TrimSuffix(s, "-->")
	s = strings.TrimSpace(s)

	// Payload embedded as an escaped string literal: `{\"name\":\"x\"}`.
	if strings.Contains(s, `\"`) {
		if unescaped := strings.ReplaceAll(s, `\"`, `"`); json.Valid([]byte(unescaped)) {
			s = unescaped
		}
	}

	s = removeTrailingCommas(s)
	s = escapeInnerQuotes(s)
	return s
}

// removeTrailingCommas deletes commas that directly precede a closing brace or
// bracket, outside of string values.
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// escapeInnerQuotes walks the payload tracking string state. A double quote
// inside a string value only terminates it when the next non-space character
// is a valid JSON delimiter; any other quote is literal text (e.g. an inch
// mark in a product description) and gets escaped.
func escapeInnerQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inString {
			if ch == '"' {
				inString = true
			}
			b.WriteByte(ch)
			continue
		}
		if escaped {
			escaped = false
			b.WriteByte(ch)
			continue
		}
		if ch == '\\' {
			escaped = true
			b.WriteByte(ch)
			continue
		}
		if ch != '"' {
			b.WriteByte(ch)
			continue
		}
		if closesString(s, i+1) {
			inString = false
			b.WriteByte(ch)
			continue
		}
		b.WriteString(`\"`)
	}
	return b.String()
}

func closesString(s string, from int) bool {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ',', '}', ']', ':':
			return true
		default:
			return false
		}
	}
	return true
}
