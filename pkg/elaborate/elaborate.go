package elaborate

import (
	"slices"

	"github.com/matzehuels/vlanimate/pkg/spec"
)

// Elaborate returns a copy of s with every animation-specific optional field
// resolved.
func Elaborate(s spec.Spec) spec.Spec {
	out := spec.Clone(s)
	switch s := out.(type) {
	case *spec.Unit:
		unit(s, spec.Root, nil)
	case *spec.Layer:
		layer(s, spec.Root, nil)
	case *spec.VConcat:
		for i, c := range s.VConcat {
			unit(c, spec.Root.Child("concat", i), nil)
		}
	}
	return out
}

// unit elaborates a unit that forms its own scope.
func unit(u *spec.Unit, id spec.ScopeID, inherited *spec.TimeEncoding) {
	time := u.Time()
	if inherited != nil {
		time = inherited.Override(time)
	}
	if time == nil {
		return
	}
	if u.Encoding == nil {
		u.Encoding = &spec.Encoding{}
	}
	u.Encoding.Time = TimeEncoding(time, u.MarkType(), u.Encoding)
	u.Params = Params(u.Params, id)
	ensureSelection(id, &u.Params, []*spec.Unit{u})
}

func layer(l *spec.Layer, id spec.ScopeID, inherited *spec.TimeEncoding) {
	time := inherited
	if own := l.Time(); own != nil {
		time = inherited.Override(own)
	}

	if !descendantDeclaresTime(l) {
		if time == nil {
			return
		}
		owned(l, id, time)
		return
	}

	if l.Encoding != nil {
		l.Encoding.Time = nil
		if len(l.Encoding.Channels) == 0 {
			l.Encoding = nil
		}
	}
	for i, c := range l.Layer {
		childID := id.Child("layer", i)
		switch c := c.(type) {
		case *spec.Unit:
			if c.HasMark() {
				unit(c, childID, time)
			}
		case *spec.Layer:
			layer(c, childID, time)
		}
	}
}

// owned elaborates a layer whose time encoding drives all its marks.
func owned(l *spec.Layer, id spec.ScopeID, time *spec.TimeEncoding) {
	units := markedUnits(l)

	markType := ""
	encodings := []*spec.Encoding{l.Encoding}
	if len(units) > 0 {
		markType = units[0].MarkType()
		encodings = append(encodings, units[0].Encoding)
	}
	if l.Encoding == nil {
		l.Encoding = &spec.Encoding{}
	}
	l.Encoding.Time = TimeEncoding(time, markType, encodings...)

	l.Params = Params(l.Params, id)
	for _, u := range units {
		u.Params = Params(u.Params, id)
	}

	// A declared selection anywhere in the scope suppresses the default.
	for _, u := range units {
		if len(spec.Selections(u.Params)) > 0 {
			return
		}
	}
	ensureSelection(id, &l.Params, units)
}

// ensureSelection synthesizes the scope's default selection when params
// declare no animation selection, and makes every marked unit filter on it.
func ensureSelection(id spec.ScopeID, params *[]spec.Param, units []*spec.Unit) {
	if len(spec.Selections(*params)) > 0 {
		return
	}
	name := id.DefaultSelection()
	*params = append(*params, spec.Param{Animation: DefaultSelection(name)})
	for _, u := range units {
		if !u.HasMark() {
			continue
		}
		if slices.ContainsFunc(u.Transform, func(t spec.Transform) bool { return t.Param == name }) {
			continue
		}
		u.Transform = append(u.Transform, spec.ParamFilter(name))
	}
}

// DefaultSelection returns the animation selection synthesized for a scope.
func DefaultSelection(name string) *spec.AnimationSelection {
	return &spec.AnimationSelection{
		Name: name,
		Select: spec.AnimationSelect{
			Type:   "point",
			On:     spec.TimerTrigger(),
			Easing: &spec.Easing{Name: spec.DefaultEasing},
		},
	}
}

func descendantDeclaresTime(l *spec.Layer) bool {
	for _, c := range l.Layer {
		switch c := c.(type) {
		case *spec.Unit:
			if c.Time() != nil {
				return true
			}
		case *spec.Layer:
			if c.Time() != nil || descendantDeclaresTime(c) {
				return true
			}
		}
	}
	return false
}

func markedUnits(s spec.Spec) []*spec.Unit {
	var out []*spec.Unit
	for _, u := range spec.Units(s) {
		if u.HasMark() {
			out = append(out, u)
		}
	}
	return out
}
