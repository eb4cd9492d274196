package vega

import "encoding/json"

// Object is a free-form JSON object: transforms, value references, encode
// blocks, bind definitions and data references.
type Object = map[string]any

// Spec is a dataflow graph or a fragment of one.
type Spec struct {
	Data    []Data   `json:"data,omitempty"`
	Signals []Signal `json:"signals,omitempty"`
	Scales  []Scale  `json:"scales,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`

	// Extra holds every other top-level property ($schema, width, axes, ...).
	Extra map[string]json.RawMessage `json:"-"`
}

// Data is a named dataset definition.
type Data struct {
	Name      string   `json:"name"`
	Source    any      `json:"source,omitempty"`
	Values    any      `json:"values,omitempty"`
	Transform []Object `json:"transform,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Signal is a named reactive variable.
type Signal struct {
	Name   string    `json:"name"`
	Value  any       `json:"value,omitempty"`
	Init   string    `json:"init,omitempty"`
	Update string    `json:"update,omitempty"`
	On     []Handler `json:"on,omitempty"`
	Bind   any       `json:"bind,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Handler is one entry of a signal's "on" list.
type Handler struct {
	Events any    `json:"events"`
	Update string `json:"update,omitempty"`
	Force  bool   `json:"force,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Scale is a named scale definition.
type Scale struct {
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	Domain    any      `json:"domain,omitempty"`
	DomainRaw any      `json:"domainRaw,omitempty"`
	Range     any      `json:"range,omitempty"`
	Zero      *bool    `json:"zero,omitempty"`
	Align     *float64 `json:"align,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Mark is a graphical mark or a group of marks.
type Mark struct {
	Name    string            `json:"name,omitempty"`
	Type    string            `json:"type"`
	From    *From             `json:"from,omitempty"`
	Clip    any               `json:"clip,omitempty"`
	Encode  map[string]Object `json:"encode,omitempty"`
	Data    []Data            `json:"data,omitempty"`
	Signals []Signal          `json:"signals,omitempty"`
	Scales  []Scale           `json:"scales,omitempty"`
	Marks   []Mark            `json:"marks,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// From binds a mark to a dataset, directly or through a facet.
type From struct {
	Data  string `json:"data,omitempty"`
	Facet *Facet `json:"facet,omitempty"`
}

// Facet partitions a dataset into groups for a group mark.
type Facet struct {
	Name    string `json:"name"`
	Data    string `json:"data"`
	Groupby any    `json:"groupby,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Encode block names.
const (
	EncodeEnter  = "enter"
	EncodeUpdate = "update"
	EncodeExit   = "exit"
)

// Bool returns a pointer to b, for optional boolean properties.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f, for optional numeric properties.
func Float(f float64) *float64 { return &f }

// Ref returns a signal reference object.
func Ref(signal string) Object { return Object{"signal": signal} }

// Events returns a signal event stream list for the given signal names.
func Events(signals ...string) []any {
	out := make([]any, len(signals))
	for i, s := range signals {
		out[i] = Object{"signal": s}
	}
	return out
}
