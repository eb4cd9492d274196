package compile

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// channelProps lists the encode properties a channel can be lowered to.
var channelProps = map[string][]string{
	"color":         {"fill", "stroke"},
	"x":             {"x", "xc", "x2", "width"},
	"y":             {"y", "yc", "y2", "height"},
	"x2":            {"x2"},
	"y2":            {"y2"},
	"size":          {"size", "fontSize"},
	"opacity":       {"opacity", "fillOpacity", "strokeOpacity"},
	"fillOpacity":   {"fillOpacity"},
	"strokeOpacity": {"strokeOpacity"},
	"strokeWidth":   {"strokeWidth"},
	"theta":         {"theta", "startAngle", "endAngle"},
	"radius":        {"radius", "outerRadius"},
	"longitude":     {"x"},
	"latitude":      {"y"},
}

func propsOf(channel string) []string {
	if props, ok := channelProps[channel]; ok {
		return props
	}
	return []string{channel}
}

// enterExit lowers the unit's enter and exit overrides through the base
// compiler and keeps only the properties produced by the overridden
// channels.
func (c *Compiler) enterExit(ctx context.Context, st *scopeState, u *UnitRef) (*vega.Spec, error) {
	blocks := map[string]*spec.Encoding{}
	if u.Unit.Enter != nil {
		blocks[vega.EncodeEnter] = u.Unit.Enter
	}
	if u.Unit.Exit != nil {
		blocks[vega.EncodeExit] = u.Unit.Exit
	}
	if len(blocks) == 0 {
		return nil, nil
	}

	encoded := map[string]vega.Object{}
	for _, block := range []string{vega.EncodeEnter, vega.EncodeExit} {
		enc, ok := blocks[block]
		if !ok {
			continue
		}
		obj, err := c.override(ctx, st, u, enc)
		if err != nil {
			return nil, fmt.Errorf("%s encoding: %w", block, err)
		}
		encoded[block] = obj
	}

	return editMark(st.g, u.Path, func(m *vega.Mark) {
		p := m.Primary()
		for block, obj := range encoded {
			if p.Encode == nil {
				p.Encode = map[string]vega.Object{}
			}
			p.Encode[block] = obj
		}
	}), nil
}

func (c *Compiler) override(ctx context.Context, st *scopeState, u *UnitRef, enc *spec.Encoding) (vega.Object, error) {
	view := &spec.Unit{
		Mark:     slices.Clone(u.Unit.Mark),
		Encoding: &spec.Encoding{Channels: map[string]json.RawMessage{}},
		Extra:    map[string]json.RawMessage{},
	}
	for k, raw := range enc.Channels {
		view.Encoding.Channels[k] = slices.Clone(raw)
	}
	for _, t := range u.Transform {
		if t.Param == "" {
			view.Transform = append(view.Transform, t)
		}
	}
	if u.Data != nil {
		view.Extra["data"] = u.Data
	}
	if u.Projection != nil {
		view.Extra["projection"] = u.Projection
	}

	doc, err := spec.Marshal(spec.Sanitize(view))
	if err != nil {
		return nil, err
	}
	g, err := c.base.Compile(ctx, doc)
	if err != nil {
		return nil, err
	}
	g, err = normalize(g)
	if err != nil {
		return nil, err
	}
	m, ok := unitMark(g, "")
	if !ok {
		return vega.Object{}, nil
	}
	update := m.Primary().Encode[vega.EncodeUpdate]

	out := vega.Object{}
	for _, channel := range enc.Names() {
		for _, prop := range propsOf(channel) {
			v, ok := update[prop]
			if !ok {
				continue
			}
			out[prop] = renameScales(st.g, u.Path, vega.CloneValue(v))
		}
	}
	return out, nil
}

// renameScales points scale references at the view-qualified scales of the
// full graph ("concat_0_x" for "x") where those exist.
func renameScales(g *vega.Spec, path string, v any) any {
	if path == "" {
		return v
	}
	switch v := v.(type) {
	case map[string]any:
		if name, ok := v["scale"].(string); ok {
			if _, exists := g.Scale(path + name); exists {
				v["scale"] = path + name
			}
		}
		return v
	case []any:
		for i := range v {
			v[i] = renameScales(g, path, v[i])
		}
		return v
	}
	return v
}
