package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError means none of the extraction strategies produced valid JSON.
// Raw keeps the full model output for diagnostics.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("openai: failed to parse completion output as JSON (raw: %s)", snippet(e.Raw))
}

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON pulls a JSON object out of free-form model text and decodes it
// into target. Models are not guaranteed to emit pure JSON, so three
// strategies are tried in order, first success wins:
//
//  1. the interior of a ```json fenced code block,
//  2. the substring between the first '{' and the last '}',
//  3. the entire raw text.
//
// If all three fail, a *ParseError carrying the raw text is returned.
func ExtractJSON(raw string, target interface{}) error {
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), target); err == nil {
			return nil
		}
	}

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			if err := json.Unmarshal([]byte(raw[start:end+1]), target); err == nil {
				return nil
			}
		}
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), target); err == nil {
		return nil
	}

	return &ParseError{Raw: raw}
}

func snippet(s string) string {
	clean := strings.Join(strings.Fields(s), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
