package compile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// layoutTransforms compute positions from the rows present, so they are
// recomputed on each keyframe's rows.
var layoutTransforms = map[string]bool{
	"stack":         true,
	"window":        true,
	"joinaggregate": true,
	"impute":        true,
	"pie":           true,
}

// binding records the keyframe datasets derived for a mark.
type binding struct {
	source string // dataset the base graph drew the mark from
	prefix string
	key    string

	// continuity is set when a selection predicate spans more than one
	// keyframe; such marks follow a spline through every keyframe.
	continuity bool
}

func (b *binding) keyed() bool { return b.key != "" }
func (b *binding) curr() string { return b.prefix + "_curr" }
func (b *binding) next() string { return b.prefix + "_next" }
func (b *binding) eq() string { return b.prefix + "_eq" }
func (b *binding) eqNext() string { return b.prefix + "_eq_next" }
func (b *binding) interpolated() string { return b.prefix + "_interpolate" }
func (b *binding) spline() string { return b.prefix + "_continuity" }

// target is the dataset the mark reads after rebinding.
func (b *binding) target() string {
	if b.keyed() {
		return b.interpolated()
	}
	return b.curr()
}

// datasets derives the current and next keyframe datasets of a unit's mark
// and rebinds the mark to them. It returns nil when the mark draws no data.
func datasets(st *scopeState, u *UnitRef) (*binding, error) {
	m, ok := unitMark(st.g, u.Path)
	if !ok {
		return nil, errors.New(errors.ErrCodeBaseCompiler, "base graph has no mark for %q", u.Path+"marks")
	}
	source := m.Dataset()
	if source == "" {
		return nil, nil
	}

	preds := predicates(st, u)
	currFilter := filterExpr(st, preds, st.current())
	b := &binding{source: source}
	if st.Time.Keyed() {
		b.key = st.Time.Key.Field
		b.continuity = slices.ContainsFunc(preds, spans)
	}

	prefix, fresh := st.prefix(source, currFilter, slices.Index(st.Units, u))
	b.prefix = prefix
	if fresh {
		st.merge(&vega.Spec{Data: derived(st, b, preds, currFilter)})
	}
	st.merge(editMark(st.g, u.Path, func(m *vega.Mark) { m.SetDataset(b.target()) }))
	return b, nil
}

// prefix names the derived datasets of source for the given filter. Marks
// sharing source and filter share datasets; a different filter on the same
// source gets a prefix qualified by the unit's index.
func (st *scopeState) prefix(source, filter string, i int) (string, bool) {
	base := source + st.suffix
	existing, ok := st.bases[base]
	switch {
	case !ok:
		st.bases[base] = filter
		return base, true
	case existing == filter:
		return base, false
	}
	alt := fmt.Sprintf("%s_%d%s", source, i, st.suffix)
	if _, ok := st.bases[alt]; ok {
		return alt, false
	}
	st.bases[alt] = filter
	return alt, true
}

func derived(st *scopeState, b *binding, preds []spec.FieldPredicate, currFilter string) []vega.Data {
	layout := func() []vega.Object {
		var out []vega.Object
		if d, ok := st.g.Dataset(b.source); ok {
			for _, t := range d.Transform {
				if kind, _ := t["type"].(string); layoutTransforms[kind] {
					out = append(out, vega.CloneObject(t))
				}
			}
		}
		return out
	}
	filter := func(expr string) vega.Object { return vega.Object{"type": "filter", "expr": expr} }

	data := []vega.Data{
		{Name: b.curr(), Source: b.source, Transform: append([]vega.Object{filter(currFilter)}, layout()...)},
		{Name: b.next(), Source: b.source, Transform: append([]vega.Object{filter(filterExpr(st, preds, st.next()))}, layout()...)},
	}
	if !b.keyed() {
		return data
	}

	lookup := func(from, as string) vega.Object {
		return vega.Object{"type": "lookup", "from": from, "key": b.key, "fields": []any{b.key}, "as": []any{as}}
	}
	data = append(data,
		vega.Data{Name: b.eq(), Source: b.curr(), Transform: []vega.Object{lookup(b.next(), "next")}},
		vega.Data{Name: b.eqNext(), Source: b.next(), Transform: []vega.Object{lookup(b.curr(), "prev"), filter("isValid(datum.prev)")}},
		vega.Data{Name: b.interpolated(), Source: b.eq(), Transform: []vega.Object{filter("isValid(datum.next)")}},
	)
	if b.continuity {
		data = append(data, vega.Data{
			Name:   b.spline(),
			Source: b.source,
			Transform: []vega.Object{
				filter(call("isValid", access("datum", b.key))),
				{"type": "collect", "sort": vega.Object{"field": st.field}},
			},
		})
	}
	return data
}

// predicates returns the field predicates of the selections the unit
// filters on. A selection without a predicate matches the time field.
func predicates(st *scopeState, u *UnitRef) []spec.FieldPredicate {
	var out []spec.FieldPredicate
	for _, name := range u.Filters {
		i := slices.IndexFunc(st.Selections, func(a *spec.AnimationSelection) bool { return a.Name == name })
		if i < 0 {
			continue
		}
		if fields := st.Selections[i].Select.Predicate.Fields(); len(fields) > 0 {
			out = append(out, fields...)
			continue
		}
		out = append(out, spec.FieldPredicate{Field: st.field, Equal: true})
	}
	if len(out) == 0 {
		out = append(out, spec.FieldPredicate{Field: st.field, Equal: true})
	}
	return out
}

// filterExpr tests each predicate's field against the keyframe signal k.
// The predicate supplies the comparison; the operand is always the keyframe.
func filterExpr(st *scopeState, preds []spec.FieldPredicate, k string) string {
	terms := make([]string, 0, len(preds))
	for _, p := range preds {
		f := access("datum", p.Field)
		switch p.TupleType() {
		case spec.TupleLess:
			terms = append(terms, f+" < "+k)
		case spec.TupleGreater:
			terms = append(terms, f+" > "+k)
		case spec.TupleLessEqual:
			terms = append(terms, f+" <= "+k)
		case spec.TupleGreaterEqual:
			terms = append(terms, f+" >= "+k)
		case spec.TupleRange:
			terms = append(terms, call("inrange", f, listOf([]string{st.minExtent(), k})))
		case spec.TupleValid:
			terms = append(terms, call("isValid", f))
		default:
			terms = append(terms, f+" == "+k)
		}
	}
	return strings.Join(terms, " && ")
}

func spans(p spec.FieldPredicate) bool {
	switch p.TupleType() {
	case spec.TupleLess, spec.TupleGreater, spec.TupleLessEqual, spec.TupleGreaterEqual, spec.TupleRange:
		return true
	}
	return false
}
