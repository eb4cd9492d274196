package vega

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal encodes a graph as indented JSON.
func Marshal(g *Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a graph as indented JSON to w.
func Write(g *Spec, w io.Writer) error {
	return writeTo(g, w)
}

// WriteFile writes a graph to a JSON file.
func WriteFile(g *Spec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(g, f)
}

// Unmarshal decodes a graph from JSON bytes.
func Unmarshal(data []byte) (*Spec, error) {
	return readFrom(bytes.NewReader(data))
}

// Read decodes a graph from r.
func Read(r io.Reader) (*Spec, error) {
	return readFrom(r)
}

// ReadFile reads a graph from a JSON file.
func ReadFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(g *Spec, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Spec, error) {
	var g Spec
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &g, nil
}
