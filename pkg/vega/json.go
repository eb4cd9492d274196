package vega

import "github.com/matzehuels/vlanimate/internal/jsonx"

var (
	specKeys    = []string{"data", "signals", "scales", "marks"}
	dataKeys    = []string{"name", "source", "values", "transform"}
	signalKeys  = []string{"name", "value", "init", "update", "on", "bind"}
	handlerKeys = []string{"events", "update", "force"}
	scaleKeys   = []string{"name", "type", "domain", "domainRaw", "range", "zero", "align"}
	markKeys    = []string{"name", "type", "from", "clip", "encode", "data", "signals", "scales", "marks"}
	facetKeys   = []string{"name", "data", "groupby"}
)

func (s Spec) MarshalJSON() ([]byte, error) {
	type alias Spec
	return jsonx.MarshalWith(alias(s), s.Extra)
}

func (s *Spec) UnmarshalJSON(data []byte) error {
	type alias Spec
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, specKeys)
	if err != nil {
		return err
	}
	*s = Spec(a)
	s.Extra = extra
	return nil
}

func (d Data) MarshalJSON() ([]byte, error) {
	type alias Data
	return jsonx.MarshalWith(alias(d), d.Extra)
}

func (d *Data) UnmarshalJSON(data []byte) error {
	type alias Data
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, dataKeys)
	if err != nil {
		return err
	}
	*d = Data(a)
	d.Extra = extra
	return nil
}

func (s Signal) MarshalJSON() ([]byte, error) {
	type alias Signal
	return jsonx.MarshalWith(alias(s), s.Extra)
}

func (s *Signal) UnmarshalJSON(data []byte) error {
	type alias Signal
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, signalKeys)
	if err != nil {
		return err
	}
	*s = Signal(a)
	s.Extra = extra
	return nil
}

func (h Handler) MarshalJSON() ([]byte, error) {
	type alias Handler
	return jsonx.MarshalWith(alias(h), h.Extra)
}

func (h *Handler) UnmarshalJSON(data []byte) error {
	type alias Handler
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, handlerKeys)
	if err != nil {
		return err
	}
	*h = Handler(a)
	h.Extra = extra
	return nil
}

func (s Scale) MarshalJSON() ([]byte, error) {
	type alias Scale
	return jsonx.MarshalWith(alias(s), s.Extra)
}

func (s *Scale) UnmarshalJSON(data []byte) error {
	type alias Scale
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, scaleKeys)
	if err != nil {
		return err
	}
	*s = Scale(a)
	s.Extra = extra
	return nil
}

func (m Mark) MarshalJSON() ([]byte, error) {
	type alias Mark
	return jsonx.MarshalWith(alias(m), m.Extra)
}

func (m *Mark) UnmarshalJSON(data []byte) error {
	type alias Mark
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, markKeys)
	if err != nil {
		return err
	}
	*m = Mark(a)
	m.Extra = extra
	return nil
}

func (f Facet) MarshalJSON() ([]byte, error) {
	type alias Facet
	return jsonx.MarshalWith(alias(f), f.Extra)
}

func (f *Facet) UnmarshalJSON(data []byte) error {
	type alias Facet
	var a alias
	extra, err := jsonx.UnmarshalWith(data, &a, facetKeys)
	if err != nil {
		return err
	}
	*f = Facet(a)
	f.Extra = extra
	return nil
}
