package router

import (
	"encoding/json"

	"github.com/hyperjump/kaiwa/internal/models"
)

// ExtractJSONObject returns the first top-level JSON object found anywhere in
// raw, tolerating surrounding prose. The scan tracks brace depth and skips
// braces inside string literals, so nested objects in revised_prompt do not
// terminate the span early.
func ExtractJSONObject(raw string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
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
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ParsePlan parses the classifier's raw output into an ExecutionPlan. The
// second return is false when no JSON object is present or it does not decode;
// callers map that to the default fallback plan rather than failing the turn.
func ParsePlan(raw string) (*models.ExecutionPlan, bool) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, false
	}
	var plan models.ExecutionPlan
	if err := json.Unmarshal([]byte(obj), &plan); err != nil {
		return nil, false
	}
	return &plan, true
}
