package compile

import "github.com/matzehuels/vlanimate/pkg/vega"

// site locates a mark by its index path from the top-level mark list.
type site []int

// locate finds the first mark named name, searching groups depth-first.
func locate(g *vega.Spec, name string) (site, bool) {
	var find func(marks []vega.Mark, prefix site) (site, bool)
	find = func(marks []vega.Mark, prefix site) (site, bool) {
		for i := range marks {
			at := append(append(site{}, prefix...), i)
			if marks[i].Name == name {
				return at, true
			}
			if s, ok := find(marks[i].Marks, at); ok {
				return s, true
			}
		}
		return nil, false
	}
	return find(g.Marks, nil)
}

func (s site) mark(g *vega.Spec) *vega.Mark {
	m := &g.Marks[s[0]]
	for _, i := range s[1:] {
		m = &m.Marks[i]
	}
	return m
}

// unitMarkSite finds the mark drawing the unit at path: its series group
// when the mark is split into series, the mark itself otherwise.
func unitMarkSite(g *vega.Spec, path string) (site, bool) {
	if s, ok := locate(g, path+"pathgroup"); ok {
		return s, true
	}
	return locate(g, path+"marks")
}

func unitMark(g *vega.Spec, path string) (*vega.Mark, bool) {
	s, ok := unitMarkSite(g, path)
	if !ok {
		return nil, false
	}
	return s.mark(g), true
}

// editMark returns a fragment replacing the top-level mark that contains the
// unit's mark, with fn applied to a copy of the unit's mark.
func editMark(g *vega.Spec, path string, fn func(m *vega.Mark)) *vega.Spec {
	s, ok := unitMarkSite(g, path)
	if !ok {
		return nil
	}
	top := g.Marks[s[0]].Clone()
	m := &top
	for _, i := range s[1:] {
		m = &m.Marks[i]
	}
	fn(m)
	return &vega.Spec{Marks: []vega.Mark{top}}
}
