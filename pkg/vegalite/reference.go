package vegalite

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/vlanimate/internal/jsonx"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// Reference is the in-process base compiler for a core subset of the
// grammar. The zero value is ready to use.
type Reference struct {
	// Width and Height are the view size used when a spec gives none.
	Width, Height float64
}

// Name returns "reference".
func (r *Reference) Name() string { return KindReference }

// Compile lowers a unit, layer or vconcat spec.
func (r *Reference) Compile(ctx context.Context, doc []byte) (*vega.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := spec.Parse(doc)
	if err != nil {
		return nil, err
	}
	l := newLowering(r.Width, r.Height)
	if err := l.lower(s); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeBaseCompiler, err, "reference compiler")
	}
	return l.finish()
}

// =============================================================================
// Lowering State
// =============================================================================

// view is the context a unit is lowered in.
type view struct {
	path        string // mark name prefix: "", "layer_0_", "concat_1_"
	scalePrefix string // position scale prefix, set inside vconcat
	width       string // width signal
	height      string // height signal
	data        json.RawMessage
	transforms  []spec.Transform
	channels    map[string]json.RawMessage
	params      []spec.Param
	projection  json.RawMessage

	// group collects the marks of a vconcat child.
	group *vega.Mark
}

type lowering struct {
	width, height float64

	g        *vega.Spec
	extra    map[string]any
	axes     []any
	sources  map[string]string
	derived  map[string]string
	nsource  int
	nderived int

	scales     map[string]*scaleBuild
	scaleOrder []string

	unitSignal  bool // the shared "unit" signal of point selections
	projections []any
}

func newLowering(width, height float64) *lowering {
	if width <= 0 {
		width = 300
	}
	if height <= 0 {
		height = 200
	}
	return &lowering{
		width:   width,
		height:  height,
		g:       &vega.Spec{},
		extra:   map[string]any{},
		sources: map[string]string{},
		derived: map[string]string{},
		scales:  map[string]*scaleBuild{},
	}
}

func (l *lowering) lower(s spec.Spec) error {
	l.extra["$schema"] = "https://vega.github.io/schema/vega/v5.json"
	l.extra["background"] = "white"
	l.extra["padding"] = 5.0

	switch s := s.(type) {
	case *spec.Unit:
		l.topLevel(s.Extra)
		v := &view{width: "width", height: "height"}
		v.inherit(s.Extra)
		return l.unit(s, v)
	case *spec.Layer:
		l.topLevel(s.Extra)
		v := &view{width: "width", height: "height"}
		return l.layer(s, v)
	case *spec.VConcat:
		return l.vconcat(s)
	}
	return fmt.Errorf("unsupported view %T", s)
}

func (l *lowering) topLevel(extra map[string]json.RawMessage) {
	l.extra["width"] = numberOr(extra["width"], l.width)
	l.extra["height"] = numberOr(extra["height"], l.height)
	for _, k := range []string{"title", "description", "autosize", "config"} {
		if raw, ok := extra[k]; ok {
			l.extra[k] = raw
		}
	}
	l.extra["style"] = "cell"
}

func (v *view) inherit(extra map[string]json.RawMessage) {
	if raw, ok := extra["data"]; ok {
		v.data = raw
	}
	if raw, ok := extra["projection"]; ok {
		v.projection = raw
	}
}

func (v view) child(path string) *view {
	c := v
	c.path = path
	c.transforms = slices.Clone(v.transforms)
	c.params = nil
	if v.channels != nil {
		c.channels = make(map[string]json.RawMessage, len(v.channels))
		for k, raw := range v.channels {
			c.channels[k] = raw
		}
	}
	return &c
}

func (l *lowering) layer(s *spec.Layer, v *view) error {
	v.inherit(s.Extra)
	v.transforms = append(v.transforms, s.Transform...)
	if s.Encoding != nil {
		if v.channels == nil {
			v.channels = map[string]json.RawMessage{}
		}
		for k, raw := range s.Encoding.Channels {
			v.channels[k] = raw
		}
	}
	params := s.Params
	for i, c := range s.Layer {
		cv := v.child(fmt.Sprintf("%slayer_%d_", v.path, i))
		if i == 0 {
			cv.params = params
		}
		var err error
		switch c := c.(type) {
		case *spec.Unit:
			cv.inherit(c.Extra)
			err = l.unit(c, cv)
		case *spec.Layer:
			err = l.layer(c, cv)
		}
		if err != nil {
			return fmt.Errorf("layer[%d]: %w", i, err)
		}
	}
	return nil
}

func (l *lowering) vconcat(s *spec.VConcat) error {
	childWidth, childHeight := l.width, l.height
	if len(s.VConcat) > 0 {
		childWidth = numberOr(s.VConcat[0].Extra["width"], l.width)
		childHeight = numberOr(s.VConcat[0].Extra["height"], l.height)
	}
	l.extra["layout"] = map[string]any{"padding": 20.0, "columns": 1.0, "bounds": "full", "align": "each"}
	l.g.Signals = append(l.g.Signals,
		vega.Signal{Name: "childWidth", Value: childWidth},
		vega.Signal{Name: "childHeight", Value: childHeight},
	)
	for k, raw := range s.Extra {
		if k == "title" || k == "description" {
			l.extra[k] = raw
		}
	}

	for i, c := range s.VConcat {
		path := fmt.Sprintf("concat_%d_", i)
		group := vega.Mark{
			Name: path + "group",
			Type: "group",
			Encode: map[string]vega.Object{vega.EncodeUpdate: {
				"width":  vega.Ref("childWidth"),
				"height": vega.Ref("childHeight"),
			}},
		}
		v := &view{path: path, scalePrefix: path, width: "childWidth", height: "childHeight", group: &group}
		v.inherit(s.Extra)
		v.inherit(c.Extra)
		if err := l.unit(c, v); err != nil {
			return fmt.Errorf("vconcat[%d]: %w", i, err)
		}
		l.g.Marks = append(l.g.Marks, group)
	}
	return nil
}

// =============================================================================
// Units
// =============================================================================

func (l *lowering) unit(u *spec.Unit, v *view) error {
	if !u.HasMark() {
		return nil
	}
	if v.data == nil {
		return fmt.Errorf("view %q has no data", strings.TrimSuffix(v.path, "_"))
	}
	source, err := l.source(v.data)
	if err != nil {
		return err
	}

	channels := map[string]json.RawMessage{}
	for k, raw := range v.channels {
		channels[k] = raw
	}
	if u.Encoding != nil {
		for k, raw := range u.Encoding.Channels {
			channels[k] = raw
		}
	}
	m := newMarkBuild(u.MarkType(), channels)

	var transform []vega.Object
	for _, t := range append(slices.Clone(v.transforms), u.Transform...) {
		lowered, err := lowerTransform(t)
		if err != nil {
			return err
		}
		transform = append(transform, lowered...)
	}
	transform = append(transform, m.validity()...)
	if geo := m.geopoint(v.path); geo != nil {
		transform = append(transform, geo)
		l.projection(v.projection, v.width, v.height)
	}
	if stack := m.stack(); stack != nil {
		transform = append(transform, stack)
	}
	data := l.dataset(source, transform)

	mark, err := l.mark(m, v, data)
	if err != nil {
		return err
	}
	if v.group != nil {
		v.group.Marks = append(v.group.Marks, mark)
	} else {
		l.g.Marks = append(l.g.Marks, mark)
	}

	params := append(slices.Clone(v.params), u.Params...)
	return l.params(params, v, m)
}

// source registers the data definition and returns the dataset name.
func (l *lowering) source(raw json.RawMessage) (string, error) {
	key := string(raw)
	if name, ok := l.sources[key]; ok {
		return name, nil
	}
	var def struct {
		Name   string         `json:"name"`
		URL    string         `json:"url"`
		Values any            `json:"values"`
		Format map[string]any `json:"format"`
	}
	if err := json.Unmarshal(raw, &def); err != nil {
		return "", fmt.Errorf("data: %w", err)
	}

	d := vega.Data{}
	switch {
	case def.Values != nil:
		d.Name = fmt.Sprintf("source_%d", l.nsource)
		d.Values = def.Values
	case def.URL != "":
		d.Name = fmt.Sprintf("source_%d", l.nsource)
		d.Extra = map[string]json.RawMessage{"url": mustRaw(def.URL)}
		format := def.Format
		if format == nil {
			format = map[string]any{}
		}
		if _, ok := format["type"]; !ok {
			switch ext := strings.TrimPrefix(path.Ext(def.URL), "."); ext {
			case "csv", "tsv":
				format["type"] = ext
				format["parse"] = "auto"
			default:
				format["type"] = "json"
			}
		}
		d.Extra["format"] = mustRaw(format)
	case def.Name != "":
		l.sources[key] = def.Name
		if _, ok := l.g.Dataset(def.Name); !ok {
			l.g.Data = append(l.g.Data, vega.Data{Name: def.Name})
		}
		return def.Name, nil
	default:
		return "", fmt.Errorf("data must have values, url or name")
	}
	l.nsource++
	l.sources[key] = d.Name
	l.g.Data = append(l.g.Data, d)
	return d.Name, nil
}

// dataset returns the derived dataset applying transform to source, sharing
// it with earlier views that derive the same rows.
func (l *lowering) dataset(source string, transform []vega.Object) string {
	key := source + "|" + string(mustRaw(transform))
	if name, ok := l.derived[key]; ok {
		return name
	}
	name := fmt.Sprintf("data_%d", l.nderived)
	l.nderived++
	l.derived[key] = name
	l.g.Data = append(l.g.Data, vega.Data{Name: name, Source: source, Transform: transform})
	return name
}

func (l *lowering) projection(raw json.RawMessage, width, height string) {
	if len(l.projections) > 0 {
		return
	}
	p := map[string]any{}
	if raw != nil {
		_ = json.Unmarshal(raw, &p)
	}
	if _, ok := p["type"]; !ok {
		p["type"] = "mercator"
	}
	p["name"] = "projection"
	p["size"] = map[string]any{"signal": fmt.Sprintf("[%s, %s]", width, height)}
	l.projections = append(l.projections, p)
}

// lowerTransform lowers the supported transforms: calculate and the filter
// forms (expression, field predicate, selection parameter).
func lowerTransform(t spec.Transform) ([]vega.Object, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(t.Raw, &obj); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	if raw, ok := obj["calculate"]; ok {
		var expr, as string
		_ = json.Unmarshal(raw, &expr)
		_ = json.Unmarshal(obj["as"], &as)
		return []vega.Object{{"type": "formula", "expr": expr, "as": as}}, nil
	}
	raw, ok := obj["filter"]
	if !ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return nil, errors.New(errors.ErrCodeUnsupported, "transform %v is not supported by the reference compiler", keys)
	}
	if t.Param != "" {
		store := t.Param + "_store"
		return []vega.Object{{"type": "filter", "expr": fmt.Sprintf(`!length(data(%q)) || vlSelectionTest(%q, datum)`, store, store)}}, nil
	}
	var expr string
	if err := json.Unmarshal(raw, &expr); err == nil {
		return []vega.Object{{"type": "filter", "expr": expr}}, nil
	}
	var pred spec.FieldPredicate
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	e, err := predicateExpr(pred)
	if err != nil {
		return nil, err
	}
	return []vega.Object{{"type": "filter", "expr": e}}, nil
}

func predicateExpr(p spec.FieldPredicate) (string, error) {
	f := fmt.Sprintf("datum[%q]", p.Field)
	lit := func(v any) string { return string(mustRaw(v)) }
	switch {
	case p.Equal != nil:
		return fmt.Sprintf("%s === %s", f, lit(p.Equal)), nil
	case p.Lt != nil:
		return fmt.Sprintf("%s < %s", f, lit(p.Lt)), nil
	case p.Gt != nil:
		return fmt.Sprintf("%s > %s", f, lit(p.Gt)), nil
	case p.Lte != nil:
		return fmt.Sprintf("%s <= %s", f, lit(p.Lte)), nil
	case p.Gte != nil:
		return fmt.Sprintf("%s >= %s", f, lit(p.Gte)), nil
	case len(p.Range) == 2:
		return fmt.Sprintf("inrange(%s, %s)", f, lit(p.Range)), nil
	case p.OneOf != nil:
		return fmt.Sprintf("indexof(%s, %s) !== -1", lit(p.OneOf), f), nil
	case p.Valid != nil:
		if *p.Valid {
			return fmt.Sprintf("isValid(%s) && isFinite(+%s)", f, f), nil
		}
		return fmt.Sprintf("!isValid(%s) || !isFinite(+%s)", f, f), nil
	}
	return "", fmt.Errorf("filter on %q has no operator", p.Field)
}

func (l *lowering) finish() (*vega.Spec, error) {
	groupAxes := map[string][]any{}
	for _, name := range l.scaleOrder {
		b := l.scales[name]
		b.build()
		l.g.Scales = append(l.g.Scales, b.scale)
		if b.axis == "" {
			continue
		}
		axis := map[string]any{"scale": name, "orient": b.axis, "title": b.title, "grid": false}
		if b.group == "" {
			l.axes = append(l.axes, axis)
		} else {
			groupAxes[b.group] = append(groupAxes[b.group], axis)
		}
	}
	for i := range l.g.Marks {
		m := &l.g.Marks[i]
		axes, ok := groupAxes[strings.TrimSuffix(m.Name, "group")]
		if !ok || m.Type != "group" {
			continue
		}
		if m.Extra == nil {
			m.Extra = map[string]json.RawMessage{}
		}
		m.Extra["axes"] = mustRaw(axes)
	}
	if len(l.axes) > 0 {
		l.extra["axes"] = l.axes
	}
	if len(l.projections) > 0 {
		l.extra["projections"] = l.projections
	}
	l.g.Extra = make(map[string]json.RawMessage, len(l.extra))
	for k, v := range l.extra {
		if raw, ok := v.(json.RawMessage); ok {
			l.g.Extra[k] = raw
			continue
		}
		l.g.Extra[k] = mustRaw(v)
	}
	return l.g, nil
}

func numberOr(raw json.RawMessage, def float64) float64 {
	var f float64
	if raw != nil && json.Unmarshal(raw, &f) == nil {
		return f
	}
	return def
}

func mustRaw(v any) json.RawMessage {
	data, err := jsonx.Encode(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
