package compile

import (
	"fmt"
	"strings"

	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// selections bridges the clock into every animation selection of the scope:
// each selection's tuple follows the current keyframe so that selection
// tests and filters see it as a clicked point.
func selections(st *scopeState) *vega.Spec {
	frag := &vega.Spec{}
	for _, a := range st.Selections {
		frag.Signals = append(frag.Signals, tupleSignals(st, a)...)
		if a.Slider() {
			frag.Signals = append(frag.Signals, slider(st, a)...)
		}
		if a.ScalesBound() {
			bindScales(st, a, frag)
		}
	}
	return frag
}

func tupleSignals(st *scopeState, a *spec.AnimationSelection) []vega.Signal {
	var fields []any
	var values []string
	for _, p := range a.Select.Predicate.Fields() {
		tupleType := p.TupleType()
		fields = append(fields, vega.Object{"type": tupleType, "field": p.Field})
		switch tupleType {
		case spec.TupleRange:
			values = append(values, listOf([]string{st.minExtent(), st.current()}))
		case spec.TupleValid:
			values = append(values, "true")
		default:
			values = append(values, st.current())
		}
	}
	if len(fields) == 0 {
		fields = []any{vega.Object{"type": spec.TupleEqual, "field": st.field}}
		values = []string{st.current()}
	}

	return []vega.Signal{
		{Name: a.Name + "_toggle", Value: false},
		{Name: a.Name + "_tuple_fields", Value: fields},
		{
			Name: a.Name + "_tuple",
			On: []vega.Handler{{
				Events: vega.Events(st.eased(), st.current()),
				Update: fmt.Sprintf(`{unit: "", fields: %s_tuple_fields, values: [%s]}`, a.Name, strings.Join(values, ", ")),
				Force:  true,
			}},
		},
	}
}

// slider binds a range input that scrubs the clock. Touching it unchecks the
// scope's play checkbox, which gates the clock through the trigger filters.
func slider(st *scopeState, a *spec.AnimationSelection) []vega.Signal {
	bind := vega.Object{}
	for k, v := range a.Bind.Input {
		bind[k] = vega.CloneValue(v)
	}
	bind["input"] = "range"

	var initial any = 0.0
	if d := explicitDomain(st.Time); len(d) > 0 {
		initial = vega.CloneValue(d[0])
		if _, ok := bind["min"]; !ok {
			bind["min"] = vega.CloneValue(d[0])
		}
		if _, ok := bind["max"]; !ok {
			bind["max"] = vega.CloneValue(d[len(d)-1])
		}
	}

	return []vega.Signal{
		{Name: sliderSignal(a), Value: initial, Bind: bind},
		{
			Name:  st.ID.IsPlaying(),
			Value: true,
			Bind:  vega.Object{"input": "checkbox"},
			On:    []vega.Handler{{Events: vega.Events(sliderSignal(a)), Update: "false"}},
		},
	}
}

// bindScales makes the scales of channels plotting the time field grow with
// the animation, from the first keyframe to the current one.
func bindScales(st *scopeState, a *spec.AnimationSelection, frag *vega.Spec) {
	extent := a.Name + "_extent"
	frag.Signals = append(frag.Signals, vega.Signal{
		Name:   extent,
		Update: listOf([]string{st.minExtent(), st.current()}),
	})

	bound := map[string]bool{}
	for _, u := range st.Units {
		m, ok := unitMark(st.g, u.Path)
		if !ok {
			continue
		}
		for _, name := range sortedKeys(m.Primary().Encode[vega.EncodeUpdate]) {
			ref, ok := vega.ParseFieldRef(m.Primary().Encode[vega.EncodeUpdate][name])
			if !ok || ref.Field != st.field || ref.Scale == "" || bound[ref.Scale] {
				continue
			}
			sc, ok := st.g.Scale(ref.Scale)
			if !ok {
				continue
			}
			bound[ref.Scale] = true
			out := sc.Clone()
			out.DomainRaw = vega.Ref(extent)
			frag.Scales = append(frag.Scales, out)
		}
		st.merge(editMark(st.g, u.Path, func(m *vega.Mark) { m.Clip = true }))
	}
}
