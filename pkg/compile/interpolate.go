package compile

import (
	"fmt"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/vega"
)

// interpolate tweens the field-bound channels of a keyed mark between the
// current row and its match in the next keyframe. Rows without a match fall
// back to their current value.
func interpolate(st *scopeState, u *UnitRef, b *binding) *vega.Spec {
	if !b.keyed() {
		return nil
	}
	return editMark(st.g, u.Path, func(m *vega.Mark) {
		update := m.Primary().Block(vega.EncodeUpdate)
		for _, name := range sortedKeys(update) {
			if v, ok := tweenChannel(st, b, update[name]); ok {
				update[name] = v
			}
		}
	})
}

func tweenChannel(st *scopeState, b *binding, v any) (any, bool) {
	ref, ok := vega.ParseFieldRef(v)
	if !ok {
		return nil, false
	}
	var sc *vega.Scale
	if ref.Scale != "" {
		s, ok := st.g.Scale(ref.Scale)
		if !ok || s.DiscreteRange() {
			return nil, false
		}
		sc = s
	}

	cur := access("datum", ref.Field)
	nxt := access("datum.next", ref.Field)
	progress := st.tween()
	if b.continuity {
		// The spline runs through the field's value at every keyframe of
		// the key; position along it follows the eased clock.
		cur = fmt.Sprintf("interpolateCatmullRom(fieldvaluesforkey(%s, %s, %s, %s), %s / %s)",
			str(b.spline()), str(ref.Field), str(b.key), access("datum", b.key), st.eased(), st.maxRange())
	}

	var tweened, fallback string
	switch {
	case sc == nil:
		tweened = lerp(cur, nxt, progress)
		fallback = access("datum", ref.Field)
	case sc.ColorRange():
		tweened = scaleCall(ref.Scale, lerp(cur, nxt, progress))
		fallback = scaleCall(ref.Scale, access("datum", ref.Field))
	default:
		dest := ref.Scale
		if st.Time.RescaleEnabled() && rescalable(sc, b) {
			dest = nextScale(ref.Scale)
		}
		tweened = fmt.Sprintf("lerp([%s, %s], %s)", scaleCall(ref.Scale, cur), scaleCall(dest, nxt), progress)
		fallback = scaleCall(ref.Scale, access("datum", ref.Field))
	}
	if b.continuity {
		tweened = cur
		if sc != nil {
			tweened = scaleCall(ref.Scale, cur)
		}
	}
	expr := fmt.Sprintf("isValid(datum.next) ? %s : %s", tweened, fallback)

	if sc != nil && sc.Type == "band" && ref.Band != nil {
		expr = fmt.Sprintf("(%s) + bandwidth(%s) * %s", expr, str(ref.Scale), literal(ref.Band))
	}
	out := vega.Object{"signal": expr}
	if ref.Offset != nil {
		out["offset"] = vega.CloneValue(ref.Offset)
	}
	return replaceDefault(v, out), true
}

func lerp(a, b, t string) string { return fmt.Sprintf("lerp([%s, %s], %s)", a, b, t) }

// replaceDefault swaps the unconditional entry of a production rule list, or
// the value itself.
func replaceDefault(v any, with vega.Object) any {
	rules, ok := v.([]any)
	if !ok || len(rules) == 0 {
		return with
	}
	out := slices.Clone(rules)
	out[len(out)-1] = with
	return out
}
