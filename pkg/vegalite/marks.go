package vegalite

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// Measurement types.
const (
	typeQuantitative = "quantitative"
	typeTemporal     = "temporal"
	typeOrdinal      = "ordinal"
	typeNominal      = "nominal"
)

// markTypes maps mark types to the graphical primitive drawing them.
var markTypes = map[string]string{
	"point":    "symbol",
	"circle":   "symbol",
	"square":   "symbol",
	"bar":      "rect",
	"tick":     "rect",
	"rect":     "rect",
	"line":     "line",
	"area":     "area",
	"text":     "text",
	"rule":     "rule",
	"trail":    "trail",
	"geoshape": "shape",
}

var strokedMarks = map[string]bool{"point": true, "line": true, "rule": true}

var pathMarks = map[string]bool{"line": true, "area": true, "trail": true}

const defaultColor = "#4c78a8"

type channelDef struct {
	Field     string
	Type      string
	Value     any
	HasValue  bool
	Scale     map[string]any
	Title     string
	Aggregate string
}

func (c channelDef) discrete() bool {
	return c.Type == typeNominal || c.Type == typeOrdinal
}

type markBuild struct {
	typ      string
	vgType   string
	channels map[string]channelDef
	stacked  string // "x", "y" or ""
	geo      bool
}

func newMarkBuild(typ string, raw map[string]json.RawMessage) *markBuild {
	m := &markBuild{typ: typ, vgType: markTypes[typ], channels: map[string]channelDef{}}
	for name, r := range raw {
		var def struct {
			Field     any            `json:"field"`
			Type      string         `json:"type"`
			Value     any            `json:"value"`
			Scale     map[string]any `json:"scale"`
			Title     string         `json:"title"`
			Aggregate string         `json:"aggregate"`
		}
		if err := json.Unmarshal(r, &def); err != nil {
			continue
		}
		var probe map[string]json.RawMessage
		_ = json.Unmarshal(r, &probe)
		_, hasValue := probe["value"]
		field, _ := def.Field.(string)
		m.channels[name] = channelDef{
			Field:     field,
			Type:      def.Type,
			Value:     def.Value,
			HasValue:  hasValue,
			Scale:     def.Scale,
			Title:     def.Title,
			Aggregate: def.Aggregate,
		}
	}
	return m
}

func (m *markBuild) field(channel string) (channelDef, bool) {
	c, ok := m.channels[channel]
	return c, ok && c.Field != ""
}

// validity drops rows whose quantitative position is missing.
func (m *markBuild) validity() []vega.Object {
	var out []vega.Object
	for _, ch := range []string{"x", "y"} {
		c, ok := m.field(ch)
		if !ok || c.Type != typeQuantitative {
			continue
		}
		f := fmt.Sprintf("datum[%q]", c.Field)
		out = append(out, vega.Object{"type": "filter", "expr": fmt.Sprintf("isValid(%s) && isFinite(+%s)", f, f)})
	}
	return out
}

func (m *markBuild) geopoint(path string) vega.Object {
	lon, ok1 := m.field("longitude")
	lat, ok2 := m.field("latitude")
	if !ok1 || !ok2 {
		return nil
	}
	m.geo = true
	return vega.Object{
		"type":       "geopoint",
		"projection": "projection",
		"fields":     []any{lon.Field, lat.Field},
		"as":         []any{path + "x", path + "y"},
	}
}

// stack stacks bars and areas along their quantitative axis when the other
// axis is discrete or absent.
func (m *markBuild) stack() vega.Object {
	if m.typ != "bar" && m.typ != "area" {
		return nil
	}
	for _, pair := range [][2]string{{"y", "x"}, {"x", "y"}} {
		q, ok := m.field(pair[0])
		if !ok || q.Type != typeQuantitative {
			continue
		}
		dim, hasDim := m.field(pair[1])
		if hasDim && !dim.discrete() {
			continue
		}
		groupby := []any{}
		if hasDim {
			groupby = append(groupby, dim.Field)
		}
		sort := vega.Object{"field": []any{}, "order": []any{}}
		if color, ok := m.field("color"); ok {
			sort = vega.Object{"field": []any{color.Field}, "order": []any{"descending"}}
		}
		m.stacked = pair[0]
		return vega.Object{
			"type":    "stack",
			"groupby": groupby,
			"field":   q.Field,
			"sort":    sort,
			"as":      []any{q.Field + "_start", q.Field + "_end"},
			"offset":  "zero",
		}
	}
	return nil
}

// groupby returns the fields splitting a path mark into series.
func (m *markBuild) groupby() []any {
	if !pathMarks[m.typ] {
		return nil
	}
	var out []any
	for _, ch := range []string{"color", "detail"} {
		if c, ok := m.field(ch); ok && !slices.Contains(out, any(c.Field)) {
			out = append(out, c.Field)
		}
	}
	return out
}

// =============================================================================
// Marks
// =============================================================================

func (l *lowering) mark(m *markBuild, v *view, data string) (vega.Mark, error) {
	if m.vgType == "" {
		return vega.Mark{}, errors.New(errors.ErrCodeUnsupported, "mark %q is not supported by the reference compiler", m.typ)
	}
	for _, c := range m.channels {
		if c.Aggregate != "" {
			return vega.Mark{}, errors.New(errors.ErrCodeUnsupported, "aggregate %q is not supported by the reference compiler", c.Aggregate)
		}
	}
	update, err := l.encode(m, v, data)
	if err != nil {
		return vega.Mark{}, err
	}

	mark := vega.Mark{
		Name:   v.path + "marks",
		Type:   m.vgType,
		From:   &vega.From{Data: data},
		Encode: map[string]vega.Object{vega.EncodeUpdate: update},
		Extra:  map[string]json.RawMessage{"style": mustRaw([]string{m.typ})},
	}
	if m.typ == "geoshape" {
		mark.Extra["transform"] = mustRaw([]any{vega.Object{"type": "geoshape", "projection": "projection"}})
		l.projection(v.projection, v.width, v.height)
	}
	if m.vgType == "line" || m.vgType == "area" || m.vgType == "trail" {
		if x, ok := m.field("x"); ok {
			mark.Extra["sort"] = mustRaw(vega.Object{"field": fmt.Sprintf("datum[%q]", x.Field)})
		}
	}

	groupby := m.groupby()
	if len(groupby) == 0 {
		return mark, nil
	}
	facet := "faceted_path_" + v.path + "main"
	mark.From = &vega.From{Data: facet}
	return vega.Mark{
		Name: v.path + "pathgroup",
		Type: "group",
		From: &vega.From{Facet: &vega.Facet{Name: facet, Data: data, Groupby: groupby}},
		Encode: map[string]vega.Object{vega.EncodeUpdate: {
			"width":  vega.Object{"field": vega.Object{"group": "width"}},
			"height": vega.Object{"field": vega.Object{"group": "height"}},
		}},
		Marks: []vega.Mark{mark},
	}, nil
}

func (l *lowering) encode(m *markBuild, v *view, data string) (vega.Object, error) {
	update := vega.Object{}
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		c := m.channels[name]
		switch name {
		case "x", "y":
			l.position(update, name, c, m, v, data)
		case "color":
			prop := "fill"
			if strokedMarks[m.typ] {
				prop = "stroke"
			}
			update[prop] = l.channelRef(name, c, m, v, data)
		case "size":
			prop := "size"
			if m.typ == "text" {
				prop = "fontSize"
			}
			update[prop] = l.channelRef(name, c, m, v, data)
		case "opacity", "shape":
			update[name] = l.channelRef(name, c, m, v, data)
		case "text":
			if c.Field != "" {
				update["text"] = vega.Object{"signal": fmt.Sprintf("isValid(datum[%q]) ? datum[%q] : \"\"", c.Field, c.Field)}
			} else if c.HasValue {
				update["text"] = vega.Object{"value": c.Value}
			}
		case "longitude", "latitude":
			axis := map[string]string{"longitude": "x", "latitude": "y"}[name]
			if m.geo {
				update[axis] = vega.Object{"field": v.path + axis}
			}
		}
	}
	if _, ok := m.channels["color"]; !ok {
		if strokedMarks[m.typ] {
			update["stroke"] = vega.Object{"value": defaultColor}
		} else {
			update["fill"] = vega.Object{"value": defaultColor}
		}
	}
	if m.typ == "point" {
		update["fill"] = vega.Object{"value": "transparent"}
	}
	return update, nil
}

func (l *lowering) channelRef(name string, c channelDef, m *markBuild, v *view, data string) vega.Object {
	if c.Field == "" {
		if c.HasValue {
			return vega.Object{"value": c.Value}
		}
		return vega.Object{"value": nil}
	}
	scale := l.scaleFor(name, c, m, v, data, c.Field)
	return vega.Object{"scale": scale, "field": c.Field}
}

func (l *lowering) position(update vega.Object, axis string, c channelDef, m *markBuild, v *view, data string) {
	size := map[string]string{"x": "width", "y": "height"}[axis]
	end := axis + "2"
	if c.Field == "" {
		if c.HasValue {
			update[axis] = vega.Object{"value": c.Value}
		}
		return
	}
	if m.stacked == axis {
		scale := l.scaleFor(axis, c, m, v, data, c.Field+"_start", c.Field+"_end")
		update[axis] = vega.Object{"scale": scale, "field": c.Field + "_end"}
		update[end] = vega.Object{"scale": scale, "field": c.Field + "_start"}
		return
	}
	scale := l.scaleFor(axis, c, m, v, data, c.Field)
	update[axis] = vega.Object{"scale": scale, "field": c.Field}
	if m.vgType == "rect" && c.discrete() {
		update[size] = vega.Object{"scale": scale, "band": 1.0}
		return
	}
	if m.vgType == "rect" && c.Type == typeQuantitative {
		update[end] = vega.Object{"scale": scale, "value": 0.0}
	}
}
