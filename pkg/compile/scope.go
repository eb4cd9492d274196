package compile

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/spec"
)

// Scope is an independently clocked part of a chart: one time encoding, the
// animation selections declared in it and the marked units it animates.
type Scope struct {
	ID         spec.ScopeID
	Time       *spec.TimeEncoding
	Selections []*spec.AnimationSelection
	Units      []*UnitRef
}

// UnitRef is a marked unit of a scope together with what it inherits from
// the views enclosing it.
type UnitRef struct {
	Unit *spec.Unit

	// Path prefixes the names of the unit's marks in the base graph:
	// "" for a top-level unit, "layer_0_" or "concat_1_" otherwise.
	Path string

	// Filters names the scope's animation selections the unit filters on.
	// Units without filters are drawn statically.
	Filters []string

	Data       json.RawMessage
	Projection json.RawMessage

	// Transform is the inherited transforms followed by the unit's own.
	Transform []spec.Transform
}

type inherited struct {
	data       json.RawMessage
	projection json.RawMessage
	transform  []spec.Transform
}

func (in inherited) with(extra map[string]json.RawMessage, transform []spec.Transform) inherited {
	out := inherited{data: in.data, projection: in.projection}
	if raw, ok := extra["data"]; ok {
		out.data = raw
	}
	if raw, ok := extra["projection"]; ok {
		out.projection = raw
	}
	out.transform = append(slices.Clone(in.transform), transform...)
	return out
}

// Scopes lists the animated scopes of an elaborated spec in document order.
// A unit with a time encoding is a scope; so is a layer owning a time
// encoding, which then animates every marked unit below it. The children of
// a layer that does not own its time encoding, and the views of a vertical
// concatenation, are scopes of their own.
func Scopes(s spec.Spec) []*Scope {
	var out []*Scope
	switch s := s.(type) {
	case *spec.Unit:
		if t := s.Time(); t != nil && s.HasMark() {
			sc := &Scope{ID: spec.Root, Time: t, Selections: spec.Selections(s.Params)}
			sc.add(s, "", inherited{})
			out = append(out, sc.resolve())
		}
	case *spec.Layer:
		out = layerScopes(out, s, spec.Root, "", inherited{})
	case *spec.VConcat:
		in := inherited{}.with(s.Extra, nil)
		for i, c := range s.VConcat {
			t := c.Time()
			if t == nil || !c.HasMark() {
				continue
			}
			id := spec.Root.Child("concat", i)
			sc := &Scope{ID: id, Time: t, Selections: spec.Selections(c.Params)}
			sc.add(c, string(id)+"_", in)
			out = append(out, sc.resolve())
		}
	}
	return out
}

func layerScopes(out []*Scope, l *spec.Layer, id spec.ScopeID, path string, in inherited) []*Scope {
	in = in.with(l.Extra, l.Transform)
	if t := l.Time(); t != nil {
		sc := &Scope{ID: id, Time: t, Selections: spec.Selections(l.Params)}
		sc.collect(l, path, in)
		return append(out, sc.resolve())
	}
	for i, c := range l.Layer {
		childID := id.Child("layer", i)
		childPath := fmt.Sprintf("%slayer_%d_", path, i)
		switch c := c.(type) {
		case *spec.Unit:
			if t := c.Time(); t != nil && c.HasMark() {
				sc := &Scope{ID: childID, Time: t, Selections: spec.Selections(c.Params)}
				sc.add(c, childPath, in)
				out = append(out, sc.resolve())
			}
		case *spec.Layer:
			out = layerScopes(out, c, childID, childPath, in)
		}
	}
	return out
}

// collect adds every marked unit below l to an owned scope.
func (sc *Scope) collect(l *spec.Layer, path string, in inherited) {
	for i, c := range l.Layer {
		childPath := fmt.Sprintf("%slayer_%d_", path, i)
		switch c := c.(type) {
		case *spec.Unit:
			sc.Selections = append(sc.Selections, spec.Selections(c.Params)...)
			if c.HasMark() {
				sc.add(c, childPath, in)
			}
		case *spec.Layer:
			sc.Selections = append(sc.Selections, spec.Selections(c.Params)...)
			sc.collect(c, childPath, in.with(c.Extra, c.Transform))
		}
	}
}

func (sc *Scope) add(u *spec.Unit, path string, in inherited) {
	in = in.with(u.Extra, u.Transform)
	sc.Units = append(sc.Units, &UnitRef{
		Unit:       u,
		Path:       path,
		Data:       in.data,
		Projection: in.projection,
		Transform:  in.transform,
	})
}

// resolve records which selections each unit filters on, once every
// selection of the scope is known.
func (sc *Scope) resolve() *Scope {
	for _, u := range sc.Units {
		u.Filters = spec.AnimationFilters(u.Transform, sc.Selections)
	}
	return sc
}

// Driver is the selection whose trigger, easing and pauses drive the scope's
// clock. Further selections of the scope follow the same clock.
func (sc *Scope) Driver() *spec.AnimationSelection {
	if len(sc.Selections) == 0 {
		return nil
	}
	return sc.Selections[0]
}
