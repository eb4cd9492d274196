package compile

import (
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// scopeState is the graph being extended for one scope.
type scopeState struct {
	*Scope

	g      *vega.Spec
	suffix string
	field  string // time field
	data   string // dataset of the scope's first mark

	// bases maps a derived dataset prefix to the filter it was created for.
	bases map[string]string
}

func newScopeState(g *vega.Spec, sc *Scope) (*scopeState, error) {
	st := &scopeState{
		Scope:  sc,
		g:      g,
		suffix: sc.ID.Suffix(),
		field:  sc.Time.Field,
		bases:  map[string]string{},
	}
	for _, u := range sc.Units {
		if m, ok := unitMark(g, u.Path); ok {
			st.data = m.Dataset()
			break
		}
	}
	if st.data == "" && len(explicitDomain(sc.Time)) == 0 {
		return nil, errors.New(errors.ErrCodeBaseCompiler, "base graph has no mark for %q", sc.Units[0].Path+"marks")
	}
	return st, nil
}

// name qualifies a scope-level name with the scope suffix.
func (st *scopeState) name(base string) string { return base + st.suffix }

func (st *scopeState) merge(frag *vega.Spec) {
	if frag == nil || frag.Empty() {
		return
	}
	st.g = vega.Merge(st.g, frag)
}

// Scope-level signal names.
func (st *scopeState) clock() string { return st.name("anim_clock") }
func (st *scopeState) eased() string { return st.name("eased_anim_clock") }
func (st *scopeState) lastTick() string { return st.name("last_tick_at") }
func (st *scopeState) maxRange() string { return st.name("max_range_extent") }
func (st *scopeState) index() string { return st.name("t_index") }
func (st *scopeState) value() string { return st.name("anim_value") }
func (st *scopeState) current() string { return st.name("anim_val_curr") }
func (st *scopeState) next() string { return st.name("anim_val_next") }
func (st *scopeState) tween() string { return st.name("anim_tween") }
func (st *scopeState) minExtent() string { return st.name("min_extent") }
func (st *scopeState) maxExtent() string { return st.name("max_extent") }
func (st *scopeState) domain() string { return st.name(st.field + "_domain") }
func (st *scopeState) pausePlaying() string { return st.name("is_playing_datum_pause") }

// timeScale is the name of the scale mapping time values to elapsed ms.
func (st *scopeState) timeScale() string {
	if st.Time.ScaleType() == spec.ScaleLinear {
		return st.name("time")
	}
	return st.name("time_" + st.field)
}
