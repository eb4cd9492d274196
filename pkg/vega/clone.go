package vega

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

// CloneValue deep-copies a decoded JSON value. Maps and slices are copied
// recursively; scalars and unknown types are returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []Object:
		out := make([]Object, len(t))
		for i, e := range t {
			out[i] = CloneObject(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case json.RawMessage:
		return slices.Clone(t)
	default:
		return v
	}
}

// CloneObject deep-copies an object.
func CloneObject(o Object) Object {
	if o == nil {
		return nil
	}
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = CloneValue(v)
	}
	return out
}

func cloneObjects(in []Object) []Object {
	if in == nil {
		return nil
	}
	out := make([]Object, len(in))
	for i, o := range in {
		out[i] = CloneObject(o)
	}
	return out
}

// Clone returns a deep copy of the graph.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := &Spec{Extra: jsonx.CloneRaw(s.Extra)}
	out.Data = cloneEach(s.Data, (*Data).Clone)
	out.Signals = cloneEach(s.Signals, (*Signal).Clone)
	out.Scales = cloneEach(s.Scales, (*Scale).Clone)
	out.Marks = cloneEach(s.Marks, (*Mark).Clone)
	return out
}

func cloneEach[T any](in []T, clone func(*T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i := range in {
		out[i] = clone(&in[i])
	}
	return out
}

// Clone returns a deep copy of the dataset definition.
func (d *Data) Clone() Data {
	return Data{
		Name:      d.Name,
		Source:    CloneValue(d.Source),
		Values:    CloneValue(d.Values),
		Transform: cloneObjects(d.Transform),
		Extra:     jsonx.CloneRaw(d.Extra),
	}
}

// Clone returns a deep copy of the signal definition.
func (s *Signal) Clone() Signal {
	out := *s
	out.Value = CloneValue(s.Value)
	out.Bind = CloneValue(s.Bind)
	out.On = cloneEach(s.On, func(h *Handler) Handler {
		c := *h
		c.Events = CloneValue(h.Events)
		c.Extra = jsonx.CloneRaw(h.Extra)
		return c
	})
	out.Extra = jsonx.CloneRaw(s.Extra)
	return out
}

// Clone returns a deep copy of the scale definition.
func (s *Scale) Clone() Scale {
	out := *s
	out.Domain = CloneValue(s.Domain)
	out.DomainRaw = CloneValue(s.DomainRaw)
	out.Range = CloneValue(s.Range)
	if s.Zero != nil {
		out.Zero = Bool(*s.Zero)
	}
	if s.Align != nil {
		out.Align = Float(*s.Align)
	}
	out.Extra = jsonx.CloneRaw(s.Extra)
	return out
}

// Clone returns a deep copy of the mark, including nested marks.
func (m *Mark) Clone() Mark {
	out := *m
	if m.From != nil {
		from := *m.From
		if m.From.Facet != nil {
			facet := *m.From.Facet
			facet.Groupby = CloneValue(facet.Groupby)
			facet.Extra = jsonx.CloneRaw(facet.Extra)
			from.Facet = &facet
		}
		out.From = &from
	}
	out.Clip = CloneValue(m.Clip)
	if m.Encode != nil {
		out.Encode = make(map[string]Object, len(m.Encode))
		for k, v := range m.Encode {
			out.Encode[k] = CloneObject(v)
		}
	}
	out.Data = cloneEach(m.Data, (*Data).Clone)
	out.Signals = cloneEach(m.Signals, (*Signal).Clone)
	out.Scales = cloneEach(m.Scales, (*Scale).Clone)
	out.Marks = cloneEach(m.Marks, (*Mark).Clone)
	out.Extra = jsonx.CloneRaw(m.Extra)
	return out
}
