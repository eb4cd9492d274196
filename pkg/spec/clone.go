package spec

import (
	"bytes"
	"slices"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

// Clone returns a deep copy of a specification tree.
func Clone(s Spec) Spec {
	switch s := s.(type) {
	case *Unit:
		return s.Clone()
	case *Layer:
		return s.Clone()
	case *VConcat:
		return s.Clone()
	}
	return nil
}

// Clone returns a deep copy.
func (u *Unit) Clone() *Unit {
	return &Unit{
		Mark:      bytes.Clone(u.Mark),
		Encoding:  u.Encoding.Clone(),
		Params:    cloneParams(u.Params),
		Transform: cloneTransforms(u.Transform),
		Enter:     u.Enter.Clone(),
		Exit:      u.Exit.Clone(),
		Extra:     jsonx.CloneRaw(u.Extra),
	}
}

// Clone returns a deep copy.
func (l *Layer) Clone() *Layer {
	out := &Layer{
		Encoding:  l.Encoding.Clone(),
		Params:    cloneParams(l.Params),
		Transform: cloneTransforms(l.Transform),
		Extra:     jsonx.CloneRaw(l.Extra),
	}
	if l.Layer != nil {
		out.Layer = make([]Spec, len(l.Layer))
		for i, c := range l.Layer {
			out.Layer[i] = Clone(c)
		}
	}
	return out
}

// Clone returns a deep copy.
func (v *VConcat) Clone() *VConcat {
	out := &VConcat{Extra: jsonx.CloneRaw(v.Extra)}
	if v.VConcat != nil {
		out.VConcat = make([]*Unit, len(v.VConcat))
		for i, c := range v.VConcat {
			out.VConcat[i] = c.Clone()
		}
	}
	return out
}

// Clone returns a deep copy.
func (e *Encoding) Clone() *Encoding {
	if e == nil {
		return nil
	}
	return &Encoding{Channels: jsonx.CloneRaw(e.Channels), Time: e.Time.Clone()}
}

// Clone returns a deep copy.
func (a *AnimationSelection) Clone() *AnimationSelection {
	if a == nil {
		return nil
	}
	out := *a
	out.Select.On.Filter = slices.Clone(a.Select.On.Filter)
	if p := a.Select.Predicate; p != nil {
		c := *p
		c.And = slices.Clone(p.And)
		out.Select.Predicate = &c
	}
	if e := a.Select.Easing; e != nil {
		out.Select.Easing = &Easing{Name: e.Name, Points: slices.Clone(e.Points)}
	}
	out.Select.Pause = slices.Clone(a.Select.Pause)
	out.Select.Extra = jsonx.CloneRaw(a.Select.Extra)
	if a.Bind != nil {
		b := Bind{Scales: a.Bind.Scales}
		if a.Bind.Input != nil {
			b.Input = cloneValue(a.Bind.Input).(map[string]any)
		}
		out.Bind = &b
	}
	out.Extra = jsonx.CloneRaw(a.Extra)
	return &out
}

func cloneParams(in []Param) []Param {
	if in == nil {
		return nil
	}
	out := make([]Param, len(in))
	for i, p := range in {
		out[i] = Param{Animation: p.Animation.Clone(), Raw: bytes.Clone(p.Raw)}
	}
	return out
}

func cloneTransforms(in []Transform) []Transform {
	if in == nil {
		return nil
	}
	out := make([]Transform, len(in))
	for i, t := range in {
		out[i] = Transform{Raw: bytes.Clone(t.Raw), Param: t.Param}
	}
	return out
}
