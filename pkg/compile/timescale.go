package compile

import (
	"fmt"

	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

func explicitDomain(t *spec.TimeEncoding) []any {
	if t == nil || t.Scale == nil {
		return nil
	}
	return t.Scale.Domain
}

func timeRange(t *spec.TimeEncoding) *spec.TimeRange {
	if t.Scale == nil {
		return nil
	}
	return t.Scale.Range
}

// timeScale emits the scale mapping time values to elapsed milliseconds and
// the signals tracking the current and next keyframe.
func timeScale(st *scopeState) *vega.Spec {
	var frag *vega.Spec
	if st.Time.ScaleType() == spec.ScaleLinear {
		frag = linearTime(st)
	} else {
		frag = bandTime(st)
	}

	next := st.maxExtent()
	if st.Time.Loop() {
		next = st.minExtent()
	}
	frag.Signals = append(frag.Signals,
		maxRangeExtent(st),
		vega.Signal{Name: st.minExtent(), Update: fmt.Sprintf("extent(%s)[0]", st.domain())},
		vega.Signal{Name: st.maxExtent(), Update: fmt.Sprintf("extent(%s)[1]", st.domain())},
		vega.Signal{
			Name: st.next(),
			Update: fmt.Sprintf("%s + 1 < length(%s) ? %s[%s + 1] : %s",
				st.index(), st.domain(), st.domain(), st.index(), next),
		},
		vega.Signal{Name: st.tween(), Update: tween(st)},
	)
	return frag
}

func domainRef(st *scopeState, sorted bool) any {
	if d := explicitDomain(st.Time); len(d) > 0 {
		return vega.CloneValue(d)
	}
	ref := vega.Object{"data": st.data, "field": st.field}
	if sorted {
		ref["sort"] = true
	}
	return ref
}

func bandTime(st *scopeState) *vega.Spec {
	T := st.timeScale()
	scale := vega.Scale{
		Name:   T,
		Type:   "band",
		Domain: domainRef(st, true),
		Align:  vega.Float(0),
	}
	if r := timeRange(st.Time); r != nil && r.StepLike() {
		scale.Range = vega.Object{"step": *r.Step}
	} else if r != nil {
		scale.Range = vega.CloneValue(r.Values)
	}

	return &vega.Spec{
		Scales: []vega.Scale{scale},
		Signals: []vega.Signal{
			{Name: st.domain(), Update: call("domain", str(T))},
			{
				Name: st.index(),
				Init: "0",
				On: []vega.Handler{{
					Events: vega.Object{"signal": st.eased()},
					Update: fmt.Sprintf("max(0, indexof(%s, invert(%s, %s)))", st.domain(), str(T), st.eased()),
				}},
			},
			{Name: st.value(), Update: fmt.Sprintf("%s[%s]", st.domain(), st.index())},
			{Name: st.current(), Update: st.value()},
		},
	}
}

// linearTime maps a continuous time field. Keyframes are the distinct time
// values in the data; the current keyframe is the last one the clock has
// passed.
func linearTime(st *scopeState) *vega.Spec {
	T := st.timeScale()
	zero := false
	if st.Time.Scale != nil && st.Time.Scale.Zero != nil {
		zero = *st.Time.Scale.Zero
	}
	scale := vega.Scale{
		Name:   T,
		Type:   "linear",
		Domain: domainRef(st, false),
		Zero:   vega.Bool(zero),
	}
	if r := timeRange(st.Time); r != nil && !r.StepLike() {
		scale.Range = vega.CloneValue(r.Values)
	}

	keyframes := st.name("time_keyframes")
	elapsed := st.name("time_keyframes_elapsed")
	f := access("datum", st.field)
	return &vega.Spec{
		Data: []vega.Data{
			{
				Name:   keyframes,
				Source: st.data,
				Transform: []vega.Object{
					{"type": "aggregate", "groupby": []any{st.field}},
					{"type": "collect", "sort": vega.Object{"field": st.field}},
				},
			},
			{
				Name:      elapsed,
				Source:    keyframes,
				Transform: []vega.Object{{"type": "filter", "expr": fmt.Sprintf("%s <= %s", f, st.value())}},
			},
		},
		Scales: []vega.Scale{scale},
		Signals: []vega.Signal{
			{Name: st.value(), Update: fmt.Sprintf("invert(%s, %s)", str(T), st.eased())},
			{Name: st.domain(), Update: fmt.Sprintf("pluck(data(%s), %s)", str(keyframes), str(st.field))},
			{Name: st.index(), Update: fmt.Sprintf("max(0, length(data(%s)) - 1)", str(elapsed))},
			{Name: st.current(), Update: fmt.Sprintf("%s[%s]", st.domain(), st.index())},
		},
	}
}

// maxRangeExtent is a literal when the end of the time range is known at
// compile time.
func maxRangeExtent(st *scopeState) vega.Signal {
	sig := vega.Signal{Name: st.maxRange()}
	r := timeRange(st.Time)
	domain := explicitDomain(st.Time)
	if r.StepLike() && len(domain) > 0 {
		sig.Value = *r.Step * float64(len(domain))
		return sig
	}
	if end, ok := r.End(); ok && !r.StepLike() {
		sig.Value = end
		return sig
	}
	sig.Update = fmt.Sprintf("extent(range(%s))[1]", str(st.timeScale()))
	return sig
}

// tween is the progress in [0, 1] through the current keyframe.
func tween(st *scopeState) string {
	T := str(st.timeScale())
	curr := fmt.Sprintf("scale(%s, %s)", T, st.current())
	if st.Time.ScaleType() != spec.ScaleLinear {
		return fmt.Sprintf("clamp((%s - %s) / bandwidth(%s), 0, 1)", st.eased(), curr, T)
	}
	next := fmt.Sprintf("scale(%s, %s)", T, st.next())
	span := fmt.Sprintf("((%s > %s ? %s : %s) - %s)", next, curr, next, st.maxRange(), curr)
	return fmt.Sprintf("clamp(%s > 0 ? (%s - %s) / %s : 0, 0, 1)", span, st.eased(), curr, span)
}
