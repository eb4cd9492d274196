// Package jsonx holds the JSON helpers shared by the spec and graph types:
// passthrough of unknown object keys and encoding without HTML escaping.
package jsonx

import (
	"bytes"
	"encoding/json"
)

// Encode is json.Marshal without HTML escaping, so expressions such as
// "a && b" stay readable in the output.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalWith encodes v and folds in the extra properties that v does not
// already define.
func MarshalWith(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := Encode(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := m[k]; !ok {
			m[k] = raw
		}
	}
	return Encode(m)
}

// UnmarshalWith decodes data into v and returns the properties not listed in
// known, or nil when there are none.
func UnmarshalWith(data []byte, v any, known []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return Rest(data, known)
}

// Rest returns the properties of the JSON object data not listed in known.
func Rest(data []byte, known []string) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(m, k)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// CloneRaw deep-copies a map of raw properties.
func CloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = bytes.Clone(v)
	}
	return out
}
