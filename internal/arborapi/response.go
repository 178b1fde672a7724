// Package arborapi decodes ArborDB REST response bodies. The store answers
// range queries with a JSON object whose member order is the query order, so
// the decoder here preserves document order instead of round-tripping through
// a Go map.
package arborapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one member of an ordered JSON object response.
type Entry struct {
	Key   string
	Value json.RawMessage
}

var nullLiteral = []byte("null")

// IsNull reports whether the body is empty or the store's null sentinel.
func IsNull(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, nullLiteral)
}

// DecodeOrdered parses a JSON object into entries in document order. Null,
// empty and non-object bodies yield a nil slice: the store returns null for
// absent nodes and a scalar for leaf nodes, and neither carries children.
func DecodeOrdered(body []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(body)
	if IsNull(trimmed) || trimmed[0] != '{' {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("arborapi: decode object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("arborapi: decode key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("arborapi: object key is not a string: %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("arborapi: decode value for %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: raw})
	}
	return entries, nil
}

// PushName extracts the generated key from a POST response, which has the
// shape {"name": "<key>"}.
func PushName(body []byte) (string, error) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err != nil {
		return "", fmt.Errorf("arborapi: decode push response: %w", err)
	}
	if payload.Name == "" {
		return "", fmt.Errorf("arborapi: push response missing name: %s", string(body))
	}
	return payload.Name, nil
}

// ErrorMessage extracts the message from an error payload of the shape
// {"error": "..."}. It returns the raw body when the shape does not match.
func ErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(bytes.TrimSpace(body))
}
