package nlu

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON recovers the first well-formed JSON object from raw
// collaborator output, which is often wrapped in markdown fences or
// surrounding prose. Recovery is attempted in order: fenced code
// block, balanced-brace scan, then a last-resort first-to-last-brace
// slice. The second return is false when no parseable object exists.
func ExtractJSON(raw string) ([]byte, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		if candidate := []byte(m[1]); json.Valid(candidate) {
			return candidate, true
		}
	}

	if candidate, ok := balancedBraces(raw); ok {
		return candidate, true
	}

	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first >= 0 && last > first {
		if candidate := []byte(raw[first : last+1]); json.Valid(candidate) {
			return candidate, true
		}
	}

	return nil, false
}

// balancedBraces walks from the first '{' counting brace depth,
// skipping braces inside JSON strings, and returns the first balanced
// object that is valid JSON.
func balancedBraces(raw string) ([]byte, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					candidate := []byte(raw[start : i+1])
					if json.Valid(candidate) {
						return candidate, true
					}
					return nil, false
				}
			}
		}
	}
	return nil, false
}

// DecodeStringMap unmarshals a JSON object into a flat string map,
// coercing scalar values to strings and dropping nested structures.
func DecodeStringMap(data []byte) (map[string]string, error) {
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				out[k] = s
			}
		case float64:
			if val == float64(int64(val)) {
				out[k] = strconv.FormatInt(int64(val), 10)
			} else {
				out[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out, nil
}
