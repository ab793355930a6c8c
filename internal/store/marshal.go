package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalJSON encodes v as compact JSON TEXT. HTML escaping is disabled so
// operators such as "<" and "&" are stored as written; map keys are sorted
// by encoding/json.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// marshalVariables converts a binding map to JSON TEXT. nil encodes as "{}".
func marshalVariables(vars map[string]float64) (string, error) {
	if vars == nil {
		vars = map[string]float64{}
	}
	s, err := marshalJSON(vars)
	if err != nil {
		return "", fmt.Errorf("marshal variables: %w", err)
	}
	return s, nil
}

// unmarshalVariables converts JSON TEXT back to a binding map.
func unmarshalVariables(s string) (map[string]float64, error) {
	vars := map[string]float64{}
	if s == "" {
		return vars, nil
	}
	if err := json.Unmarshal([]byte(s), &vars); err != nil {
		return nil, fmt.Errorf("unmarshal variables: %w", err)
	}
	return vars, nil
}

// marshalRejected converts the rejecting rule ids of a step to JSON TEXT.
func marshalRejected(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	s, err := marshalJSON(ids)
	if err != nil {
		return "", fmt.Errorf("marshal rejected: %w", err)
	}
	return s, nil
}

// unmarshalRejected converts JSON TEXT back to rule ids. An empty list
// decodes as nil.
func unmarshalRejected(s string) ([]string, error) {
	var ids []string
	if s == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal rejected: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
