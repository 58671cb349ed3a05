package openai

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"a\":1}\n```"
	var out map[string]int
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if out["a"] != 1 {
		t.Fatalf("expected a=1, got %v", out)
	}
}

func TestExtractJSONBareObject(t *testing.T) {
	var out map[string]int
	if err := ExtractJSON(`{"a":1}`, &out); err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if out["a"] != 1 {
		t.Fatalf("expected a=1, got %v", out)
	}
}

func TestExtractJSONObjectWrappedInProse(t *testing.T) {
	raw := "Sure! The grading outcome is {\"student_name\":\"Ada\",\"roll_no\":\"17\"} as requested."
	var out map[string]string
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if out["student_name"] != "Ada" || out["roll_no"] != "17" {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestExtractJSONFenceWinsOverBraces(t *testing.T) {
	// The fenced block must be tried first even when stray braces surround it.
	raw := "ignore {this}\n```json\n{\"a\":2}\n```\ntrailing {junk}"
	var out map[string]int
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if out["a"] != 2 {
		t.Fatalf("expected a=2, got %v", out)
	}
}

func TestExtractJSONFailureKeepsRawText(t *testing.T) {
	raw := "not json at all"
	var out map[string]int
	err := ExtractJSON(raw, &out)
	if err == nil {
		t.Fatal("expected ExtractJSON to fail")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Raw != raw {
		t.Fatalf("expected raw text %q preserved, got %q", raw, parseErr.Raw)
	}
	if !strings.Contains(parseErr.Error(), "not json at all") {
		t.Fatalf("error should include a snippet of the raw text: %s", parseErr.Error())
	}
}

func TestExtractJSONMalformedFenceFallsThrough(t *testing.T) {
	// A fenced block with broken JSON must not stop the later strategies.
	raw := "```json\n[1,2\n```\nactual payload {\"a\":3} here"
	var out map[string]int
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if out["a"] != 3 {
		t.Fatalf("expected a=3, got %v", out)
	}
}
