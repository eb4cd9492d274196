package compile

import (
	"slices"

	"github.com/matzehuels/vlanimate/pkg/vega"
)

func nextScale(name string) string { return name + "_next" }

// rescalable reports whether sc is a continuous scale whose domain is drawn
// from the mark's data, before or after rebinding.
func rescalable(sc *vega.Scale, b *binding) bool {
	if !sc.ContinuousDomain() {
		return false
	}
	data := vega.DomainData(sc.Domain)
	return slices.Contains(data, b.source) || slices.Contains(data, b.curr())
}

// rescale fits the scales of the mark's field-bound channels to the current
// keyframe, and gives each a twin fitted to the next keyframe that tweens
// interpolate towards.
func rescale(st *scopeState, u *UnitRef, b *binding) *vega.Spec {
	if !st.Time.RescaleEnabled() {
		return nil
	}
	m, ok := unitMark(st.g, u.Path)
	if !ok {
		return nil
	}
	update := m.Primary().Encode[vega.EncodeUpdate]

	frag := &vega.Spec{}
	seen := map[string]bool{}
	for _, name := range sortedKeys(update) {
		ref, ok := vega.ParseFieldRef(update[name])
		if !ok || ref.Scale == "" || seen[ref.Scale] {
			continue
		}
		seen[ref.Scale] = true
		sc, ok := st.g.Scale(ref.Scale)
		if !ok || !rescalable(sc, b) {
			continue
		}

		curr := sc.Clone()
		curr.Domain, _ = vega.RebindDomain(curr.Domain, b.source, b.curr())
		frag.Scales = append(frag.Scales, curr)

		next, exists := st.g.Scale(nextScale(ref.Scale))
		var twin vega.Scale
		if exists {
			twin = next.Clone()
		} else {
			twin = sc.Clone()
			twin.Name = nextScale(ref.Scale)
			twin.Domain, _ = vega.RebindDomain(twin.Domain, b.curr(), b.next())
		}
		twin.Domain, _ = vega.RebindDomain(twin.Domain, b.source, b.next())
		frag.Scales = append(frag.Scales, twin)
	}
	return frag
}
