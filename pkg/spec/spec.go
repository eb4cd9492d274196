package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/vlanimate/internal/jsonx"
	"github.com/matzehuels/vlanimate/pkg/errors"
)

// Spec is an animated chart specification: a *Unit, *Layer or *VConcat.
type Spec interface {
	isSpec()
}

func (*Unit) isSpec()    {}
func (*Layer) isSpec()   {}
func (*VConcat) isSpec() {}

// Unit is a single mark with its encoding.
type Unit struct {
	Mark      json.RawMessage `json:"mark,omitempty"`
	Encoding  *Encoding       `json:"encoding,omitempty"`
	Params    []Param         `json:"params,omitempty"`
	Transform []Transform     `json:"transform,omitempty"`
	Enter     *Encoding       `json:"enter,omitempty"`
	Exit      *Encoding       `json:"exit,omitempty"`

	// Extra holds every other property (data, width, projection, ...).
	Extra map[string]json.RawMessage `json:"-"`
}

// Layer draws its children on top of each other.
type Layer struct {
	Layer     []Spec      `json:"-"`
	Encoding  *Encoding   `json:"encoding,omitempty"`
	Params    []Param     `json:"params,omitempty"`
	Transform []Transform `json:"transform,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// VConcat stacks independently animated units vertically.
type VConcat struct {
	VConcat []*Unit `json:"vconcat"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	unitKeys    = []string{"mark", "encoding", "params", "transform", "enter", "exit"}
	layerKeys   = []string{"layer", "encoding", "params", "transform"}
	vconcatKeys = []string{"vconcat"}
)

// =============================================================================
// Parsing
// =============================================================================

// Parse decodes an animated chart specification. The variant is chosen from
// the top-level keys: "layer" makes a Layer, "vconcat" a VConcat, anything
// else a Unit.
func Parse(data []byte) (Spec, error) {
	s, err := parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "parse animation spec")
	}
	return s, nil
}

func parse(data []byte) (Spec, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["layer"]; ok {
		l := &Layer{}
		return l, l.UnmarshalJSON(data)
	}
	if _, ok := probe["vconcat"]; ok {
		v := &VConcat{}
		return v, v.UnmarshalJSON(data)
	}
	u := &Unit{}
	return u, u.UnmarshalJSON(data)
}

// Marshal encodes a specification as indented JSON.
func Marshal(s Spec) ([]byte, error) {
	data, err := jsonx.Encode(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (u Unit) MarshalJSON() ([]byte, error) {
	type alias Unit
	return jsonx.MarshalWith(alias(u), u.Extra)
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	type alias Unit
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, unitKeys)
	if err != nil {
		return err
	}
	*u = Unit(a)
	u.Extra = extra
	return nil
}

func (l Layer) MarshalJSON() ([]byte, error) {
	type alias Layer
	body, err := jsonx.MarshalWith(alias(l), l.Extra)
	if err != nil {
		return nil, err
	}
	children := make([]json.RawMessage, len(l.Layer))
	for i, c := range l.Layer {
		if children[i], err = jsonx.Encode(c); err != nil {
			return nil, err
		}
	}
	layer, err := jsonx.Encode(children)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	m["layer"] = layer
	return jsonx.Encode(m)
}

func (l *Layer) UnmarshalJSON(data []byte) error {
	type alias Layer
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, layerKeys)
	if err != nil {
		return err
	}
	var raw struct {
		Layer []json.RawMessage `json:"layer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Layer = make([]Spec, len(raw.Layer))
	for i, c := range raw.Layer {
		child, err := parse(c)
		if err != nil {
			return fmt.Errorf("layer[%d]: %w", i, err)
		}
		if _, ok := child.(*VConcat); ok {
			return fmt.Errorf("layer[%d]: vconcat cannot be layered", i)
		}
		a.Layer[i] = child
	}
	*l = Layer(a)
	l.Extra = extra
	return nil
}

func (v VConcat) MarshalJSON() ([]byte, error) {
	type alias VConcat
	return jsonx.MarshalWith(alias(v), v.Extra)
}

func (v *VConcat) UnmarshalJSON(data []byte) error {
	type alias VConcat
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, vconcatKeys)
	if err != nil {
		return err
	}
	for i, c := range a.VConcat {
		if c == nil {
			return fmt.Errorf("vconcat[%d]: null view", i)
		}
		for _, k := range []string{"layer", "vconcat", "hconcat", "concat", "facet", "repeat"} {
			if _, ok := c.Extra[k]; ok {
				return fmt.Errorf("vconcat[%d]: %s views cannot be animated inside vconcat", i, k)
			}
		}
	}
	*v = VConcat(a)
	v.Extra = extra
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// MarkType returns the mark type of the unit, whether the mark is given as a
// string or as a definition object, or "" when the unit has no mark.
func (u *Unit) MarkType() string {
	if len(u.Mark) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(u.Mark, &name); err == nil {
		return name
	}
	var def struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(u.Mark, &def); err == nil {
		return def.Type
	}
	return ""
}

// HasMark reports whether the unit draws anything.
func (u *Unit) HasMark() bool { return len(u.Mark) > 0 }

// Time returns the unit's time encoding, or nil.
func (u *Unit) Time() *TimeEncoding {
	if u.Encoding == nil {
		return nil
	}
	return u.Encoding.Time
}

// Time returns the layer's own time encoding, or nil.
func (l *Layer) Time() *TimeEncoding {
	if l.Encoding == nil {
		return nil
	}
	return l.Encoding.Time
}

// Selections returns the animation selections declared in params.
func Selections(params []Param) []*AnimationSelection {
	var out []*AnimationSelection
	for i := range params {
		if params[i].Animation != nil {
			out = append(out, params[i].Animation)
		}
	}
	return out
}

// Units returns every unit of the tree in document order.
func Units(s Spec) []*Unit {
	var out []*Unit
	var walk func(Spec)
	walk = func(s Spec) {
		switch s := s.(type) {
		case *Unit:
			out = append(out, s)
		case *Layer:
			for _, c := range s.Layer {
				walk(c)
			}
		case *VConcat:
			for _, c := range s.VConcat {
				out = append(out, c)
			}
		}
	}
	walk(s)
	return out
}
