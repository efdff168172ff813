package llm

import (
	"errors"
	"testing"
)

type samplePayload struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func TestDecodeJSONDirect(t *testing.T) {
	var p samplePayload
	err := DecodeJSON(`{"intent":"schedule","confidence":0.9}`, &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Intent != "schedule" || p.Confidence != 0.9 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestDecodeJSONHandlesCodeFence(t *testing.T) {
	raw := "```json\n{\"intent\":\"cancel\",\"confidence\":0.8}\n```"
	var p samplePayload
	if err := DecodeJSON(raw, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Intent != "cancel" {
		t.Fatalf("expected cancel intent, got %q", p.Intent)
	}
}

func TestDecodeJSONExtractsEmbeddedObject(t *testing.T) {
	raw := "Sure, here is the result: {\"intent\":\"reschedule\",\"confidence\":0.7} hope that helps"
	var p samplePayload
	if err := DecodeJSON(raw, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Intent != "reschedule" {
		t.Fatalf("expected reschedule intent, got %q", p.Intent)
	}
}

func TestDecodeJSONBalancedBraces(t *testing.T) {
	// Nested objects and braces inside string literals must not break the scan.
	raw := `prefix {"intent":"schedule","confidence":0.6} {"intent":"cancel","confidence":0.1}`
	var p samplePayload
	if err := DecodeJSON(raw, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Intent != "schedule" {
		t.Fatalf("expected first object to win, got %q", p.Intent)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var p samplePayload
	err := DecodeJSON(`{"intent":"schedule","confidence":0.9,"diagnosis":"flu"}`, &p)
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	cases := []string{"", "   ", "no json here", "{broken", "```json\n```"}
	for _, raw := range cases {
		var p samplePayload
		if err := DecodeJSON(raw, &p); !errors.Is(err, ErrParseFailure) {
			t.Fatalf("DecodeJSON(%q): expected ErrParseFailure, got %v", raw, err)
		}
	}
}

func TestFirstJSONObjectSkipsBracesInStrings(t *testing.T) {
	span, ok := firstJSONObject(`note {"messageText":"see you at {the clinic}"} end`)
	if !ok {
		t.Fatal("expected a span")
	}
	if span != `{"messageText":"see you at {the clinic}"}` {
		t.Fatalf("unexpected span: %s", span)
	}
}
