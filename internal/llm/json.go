package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailure reports that an upstream response did not contain the
// expected JSON payload. Callers match it with errors.Is.
var ErrParseFailure = errors.New("llm: response did not contain valid JSON")

// DecodeJSON extracts a JSON object from raw model output and decodes it
// strictly into v. It first strips a surrounding code fence and tries the
// text as-is, then falls back to the first balanced curly-brace span.
// Unknown fields are rejected: the model is not allowed to widen the schema.
func DecodeJSON(raw string, v any) error {
	text := stripCodeFence(raw)
	if text == "" {
		return fmt.Errorf("%w: empty response", ErrParseFailure)
	}

	if err := strictUnmarshal(text, v); err == nil {
		return nil
	}

	if span, ok := firstJSONObject(text); ok {
		if err := strictUnmarshal(span, v); err == nil {
			return nil
		}
	}

	return ErrParseFailure
}

func strictUnmarshal(text string, v any) error {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// firstJSONObject scans text for the first balanced {...} span, skipping
// brace characters inside string literals.
func firstJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
