package usecase

import (
	"encoding/json"
	"strings"

	"festify-gateway/internal/domain/entity"
)

const snippetLimit = 500

type scanState int

const (
	stateOutside scanState = iota
	stateInString
	stateEscaped
)

// RecoverJSON turns an agent answer into a JSON object. Valid JSON takes the
// fast path; otherwise the outermost {...} span is cut out and raw control
// characters inside string literals are escaped before a second parse.
func RecoverJSON(raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil && out != nil {
		return out, nil
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, entity.ErrNoJSONObject
	}

	repaired := escapeControlChars(raw[start : end+1])
	out = nil
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil, &entity.UnrecoverableJSONError{Err: err, Snippet: truncateRunes(repaired, snippetLimit)}
	}
	if out == nil {
		return nil, entity.ErrNoJSONObject
	}
	return out, nil
}

// escapeControlChars walks s with three states:
//
//	Outside   --"-->  InString
//	InString  --"-->  Outside
//	InString  --\-->  Escaped
//	Escaped   --any-> InString
//
// LF, CR and TAB met in InString are written as \n, \r and \t. Everything else,
// including the byte after a backslash, is copied as is. Only ASCII bytes drive
// transitions, so multi-byte UTF-8 sequences pass through untouched.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	state := stateOutside
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateOutside:
			if c == '"' {
				state = stateInString
			}
			b.WriteByte(c)
		case stateInString:
			switch c {
			case '"':
				state = stateOutside
				b.WriteByte(c)
			case '\\':
				state = stateEscaped
				b.WriteByte(c)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteByte(c)
			}
		case stateEscaped:
			state = stateInString
			b.WriteByte(c)
		}
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
