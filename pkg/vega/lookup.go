package vega

import "slices"

// Dataset returns the dataset named name.
func (s *Spec) Dataset(name string) (*Data, bool) {
	i := slices.IndexFunc(s.Data, func(d Data) bool { return d.Name == name })
	if i < 0 {
		return nil, false
	}
	return &s.Data[i], true
}

// Signal returns the signal named name.
func (s *Spec) Signal(name string) (*Signal, bool) {
	i := slices.IndexFunc(s.Signals, func(sg Signal) bool { return sg.Name == name })
	if i < 0 {
		return nil, false
	}
	return &s.Signals[i], true
}

// Scale returns the scale named name.
func (s *Spec) Scale(name string) (*Scale, bool) {
	i := slices.IndexFunc(s.Scales, func(sc Scale) bool { return sc.Name == name })
	if i < 0 {
		return nil, false
	}
	return &s.Scales[i], true
}

// Mark returns the top-level mark named name.
func (s *Spec) Mark(name string) (*Mark, bool) {
	i := slices.IndexFunc(s.Marks, func(m Mark) bool { return m.Name == name })
	if i < 0 {
		return nil, false
	}
	return &s.Marks[i], true
}

// Walk calls fn for every mark of the graph in depth-first order, parents
// before children. parent is nil for top-level marks.
func (s *Spec) Walk(fn func(m, parent *Mark)) {
	for i := range s.Marks {
		walkMark(&s.Marks[i], nil, fn)
	}
}

func walkMark(m, parent *Mark, fn func(m, parent *Mark)) {
	fn(m, parent)
	for i := range m.Marks {
		walkMark(&m.Marks[i], m, fn)
	}
}

// Faceted reports whether the mark is a group drawing a facet of a dataset,
// the shape used for series marks such as lines and areas.
func (m *Mark) Faceted() bool {
	return m.Type == "group" && m.From != nil && m.From.Facet != nil
}

// Dataset returns the dataset the mark draws from, looking through a facet.
func (m *Mark) Dataset() string {
	if m.From == nil {
		return ""
	}
	if m.From.Facet != nil {
		return m.From.Facet.Data
	}
	return m.From.Data
}

// SetDataset rebinds the mark to another dataset, through its facet if it has one.
func (m *Mark) SetDataset(name string) {
	switch {
	case m.From == nil:
		m.From = &From{Data: name}
	case m.From.Facet != nil:
		m.From.Facet.Data = name
	default:
		m.From.Data = name
	}
}

// Primary returns the mark whose encode block renders the rows: the first
// child of a faceted group, the mark itself otherwise.
func (m *Mark) Primary() *Mark {
	if m.Faceted() && len(m.Marks) > 0 {
		return &m.Marks[0]
	}
	return m
}

// Block returns the encode block named name, creating it if needed.
func (m *Mark) Block(name string) Object {
	if m.Encode == nil {
		m.Encode = make(map[string]Object)
	}
	b, ok := m.Encode[name]
	if !ok || b == nil {
		b = make(Object)
		m.Encode[name] = b
	}
	return b
}
