package vegalite

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/vega"
)

type domainRef struct {
	data  string
	field string
}

type scaleBuild struct {
	scale    vega.Scale
	refs     []domainRef
	discrete bool
	fixed    bool // explicit domain
	group    string
	axis     string
	title    string
}

// scaleFor registers the fields of data on the scale serving channel and
// returns the scale's name. Position scales are per view inside a vconcat;
// every other scale is shared.
func (l *lowering) scaleFor(channel string, c channelDef, m *markBuild, v *view, data string, fields ...string) string {
	name := channel
	if channel == "x" || channel == "y" {
		name = v.scalePrefix + channel
	}
	b, ok := l.scales[name]
	if !ok {
		b = newScale(name, channel, c, m, v)
		l.scales[name] = b
		l.scaleOrder = append(l.scaleOrder, name)
	}
	for _, f := range fields {
		ref := domainRef{data: data, field: f}
		if !slices.Contains(b.refs, ref) {
			b.refs = append(b.refs, ref)
		}
	}
	return name
}

func newScale(name, channel string, c channelDef, m *markBuild, v *view) *scaleBuild {
	b := &scaleBuild{scale: vega.Scale{Name: name}, discrete: c.discrete()}
	extra := map[string]any{}

	switch channel {
	case "x", "y":
		switch {
		case c.discrete() && m.vgType == "rect":
			b.scale.Type = "band"
			extra["paddingInner"] = 0.1
			extra["paddingOuter"] = 0.05
		case c.discrete():
			b.scale.Type = "point"
			extra["padding"] = 0.5
		case c.Type == typeTemporal:
			b.scale.Type = "time"
			extra["nice"] = true
		default:
			b.scale.Type = "linear"
			b.scale.Zero = vega.Bool(m.vgType == "rect" || m.stacked != "")
			extra["nice"] = true
		}
		if channel == "x" {
			b.scale.Range = []any{0.0, vega.Ref(v.width)}
			b.axis = "bottom"
		} else {
			b.scale.Range = []any{vega.Ref(v.height), 0.0}
			b.axis = "left"
		}
		b.group = v.scalePrefix
		b.title = c.Title
		if b.title == "" {
			b.title = c.Field
		}
	case "color":
		switch {
		case c.discrete():
			b.scale.Type = "ordinal"
			b.scale.Range = "category"
		case c.Type == typeTemporal:
			b.scale.Type = "time"
			b.scale.Range = "ramp"
		default:
			b.scale.Type = "linear"
			b.scale.Range = "ramp"
			b.scale.Zero = vega.Bool(false)
		}
	case "size":
		b.scale.Type = "linear"
		b.scale.Range = []any{0.0, 361.0}
		b.scale.Zero = vega.Bool(true)
	case "opacity":
		b.scale.Type = "linear"
		b.scale.Range = []any{0.3, 0.8}
		b.scale.Zero = vega.Bool(false)
	case "shape":
		b.scale.Type = "ordinal"
		b.scale.Range = "symbol"
	}

	for k, val := range c.Scale {
		switch k {
		case "type":
			if t, ok := val.(string); ok {
				b.scale.Type = t
				b.discrete = t == "band" || t == "point" || t == "ordinal"
			}
		case "domain":
			b.scale.Domain = vega.CloneValue(val)
			b.fixed = true
		case "range", "scheme":
			if k == "scheme" {
				b.scale.Range = vega.Object{"scheme": val}
			} else {
				b.scale.Range = vega.CloneValue(val)
			}
		case "zero":
			if z, ok := val.(bool); ok {
				b.scale.Zero = vega.Bool(z)
			}
		default:
			extra[k] = vega.CloneValue(val)
		}
	}
	if len(extra) > 0 {
		b.scale.Extra = make(map[string]json.RawMessage, len(extra))
		for k, val := range extra {
			b.scale.Extra[k] = mustRaw(val)
		}
	}
	return b
}

// build sets the data-driven domain from the collected field references.
func (b *scaleBuild) build() {
	if b.fixed || len(b.refs) == 0 {
		return
	}
	var domain vega.Object
	switch {
	case len(b.refs) == 1:
		domain = vega.Object{"data": b.refs[0].data, "field": b.refs[0].field}
	case sameData(b.refs):
		fields := make([]any, len(b.refs))
		for i, r := range b.refs {
			fields[i] = r.field
		}
		domain = vega.Object{"data": b.refs[0].data, "fields": fields}
	default:
		fields := make([]any, len(b.refs))
		for i, r := range b.refs {
			fields[i] = vega.Object{"data": r.data, "field": r.field}
		}
		domain = vega.Object{"fields": fields}
	}
	if b.discrete {
		domain["sort"] = true
	}
	b.scale.Domain = domain
}

func sameData(refs []domainRef) bool {
	for _, r := range refs[1:] {
		if r.data != refs[0].data {
			return false
		}
	}
	return true
}
