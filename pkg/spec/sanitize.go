package spec

import (
	"encoding/json"
	"slices"
)

// Sanitize returns a copy of s that the base grammar compiler accepts: time
// encodings, enter and exit overrides are stripped, filters on animation
// selections are removed, and every animation selection is replaced by a
// plain point selection over the same fields. s is not modified.
func Sanitize(s Spec) Spec {
	out := Clone(s)
	names := animationNames(out)
	sanitize(out, nil, names)
	return out
}

func sanitize(s Spec, inherited *TimeEncoding, names map[string]bool) {
	switch s := s.(type) {
	case *Unit:
		time := inherited
		if t := s.Time(); t != nil {
			time = t
		}
		s.Params = plainParams(s.Params, time)
		s.Transform = withoutAnimationFilters(s.Transform, names)
		stripTime(s.Encoding)
		s.Enter, s.Exit = nil, nil
	case *Layer:
		time := inherited
		if t := s.Time(); t != nil {
			time = t
		}
		s.Params = plainParams(s.Params, time)
		s.Transform = withoutAnimationFilters(s.Transform, names)
		stripTime(s.Encoding)
		if s.Encoding != nil && len(s.Encoding.Channels) == 0 {
			s.Encoding = nil
		}
		for _, c := range s.Layer {
			sanitize(c, time, names)
		}
	case *VConcat:
		for _, c := range s.VConcat {
			sanitize(c, inherited, names)
		}
	}
}

func stripTime(e *Encoding) {
	if e != nil {
		e.Time = nil
	}
}

// animationNames collects the names of every animation selection in the tree.
func animationNames(s Spec) map[string]bool {
	names := map[string]bool{}
	var walk func(Spec)
	walk = func(s Spec) {
		switch s := s.(type) {
		case *Unit:
			for _, a := range Selections(s.Params) {
				names[a.Name] = true
			}
		case *Layer:
			for _, a := range Selections(s.Params) {
				names[a.Name] = true
			}
			for _, c := range s.Layer {
				walk(c)
			}
		case *VConcat:
			for _, c := range s.VConcat {
				walk(c)
			}
		}
	}
	walk(s)
	return names
}

// AnimationFilters returns the names of the animation selections the
// transforms filter on, in order.
func AnimationFilters(transforms []Transform, selections []*AnimationSelection) []string {
	var out []string
	for _, t := range transforms {
		if t.Param == "" {
			continue
		}
		if slices.ContainsFunc(selections, func(a *AnimationSelection) bool { return a.Name == t.Param }) {
			out = append(out, t.Param)
		}
	}
	return out
}

func withoutAnimationFilters(in []Transform, names map[string]bool) []Transform {
	out := slices.DeleteFunc(in, func(t Transform) bool { return t.Param != "" && names[t.Param] })
	if len(out) == 0 {
		return nil
	}
	return out
}

func plainParams(in []Param, time *TimeEncoding) []Param {
	for i, p := range in {
		if p.Animation == nil {
			continue
		}
		raw, _ := json.Marshal(map[string]any{
			"name":   p.Animation.Name,
			"select": map[string]any{"type": "point", "fields": SelectionFields(p.Animation, time)},
		})
		in[i] = Param{Raw: raw}
	}
	return in
}

// SelectionFields returns the fields a selection's tuples are keyed on: the
// predicate's fields, or the time field.
func SelectionFields(a *AnimationSelection, time *TimeEncoding) []string {
	if preds := a.Select.Predicate.Fields(); len(preds) > 0 {
		fields := make([]string, len(preds))
		for i, p := range preds {
			fields[i] = p.Field
		}
		return fields
	}
	if time != nil && time.Field != "" {
		return []string{time.Field}
	}
	return []string{}
}
