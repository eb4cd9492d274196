package vegalite

import (
	"context"
	"testing"

	"github.com/matzehuels/vlanimate/internal/jsonx"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

const scatter = `{
  "data": {"values": [{"country": "A", "gdp": 1, "life": 50, "year": 2000}]},
  "mark": "point",
  "encoding": {
    "x": {"field": "gdp", "type": "quantitative"},
    "y": {"field": "life", "type": "quantitative"},
    "color": {"field": "country", "type": "nominal"}
  }
}`

func compileRef(t *testing.T, doc string) *vega.Spec {
	t.Helper()
	g, err := (&Reference{}).Compile(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return g
}

func jsonOf(t *testing.T, v any) string {
	t.Helper()
	data, err := jsonx.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestReferenceUnit(t *testing.T) {
	g := compileRef(t, scatter)

	if _, ok := g.Dataset("source_0"); !ok {
		t.Error("missing source_0")
	}
	d, ok := g.Dataset("data_0")
	if !ok {
		t.Fatal("missing data_0")
	}
	if d.Source != "source_0" {
		t.Errorf("data_0 source = %v, want source_0", d.Source)
	}

	m, ok := g.Mark("marks")
	if !ok {
		t.Fatal("missing marks")
	}
	if m.Type != "symbol" {
		t.Errorf("mark type = %q, want symbol", m.Type)
	}
	if m.Dataset() != "data_0" {
		t.Errorf("mark data = %q, want data_0", m.Dataset())
	}

	update := m.Encode[vega.EncodeUpdate]
	tests := []struct {
		channel string
		want    string
	}{
		{"x", `{"field":"gdp","scale":"x"}`},
		{"y", `{"field":"life","scale":"y"}`},
		{"stroke", `{"field":"country","scale":"color"}`},
	}
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			if got := jsonOf(t, update[tt.channel]); got != tt.want {
				t.Errorf("update.%s = %s, want %s", tt.channel, got, tt.want)
			}
		})
	}

	x, ok := g.Scale("x")
	if !ok {
		t.Fatal("missing scale x")
	}
	if x.Type != "linear" {
		t.Errorf("x type = %q, want linear", x.Type)
	}
	if got, want := jsonOf(t, x.Domain), `{"data":"data_0","field":"gdp"}`; got != want {
		t.Errorf("x domain = %s, want %s", got, want)
	}
	color, _ := g.Scale("color")
	if color.Type != "ordinal" || color.Range != "category" {
		t.Errorf("color = %s/%v, want ordinal/category", color.Type, color.Range)
	}
	if got, want := jsonOf(t, color.Domain), `{"data":"data_0","field":"country","sort":true}`; got != want {
		t.Errorf("color domain = %s, want %s", got, want)
	}
}

func TestReferenceLayer(t *testing.T) {
	g := compileRef(t, `{
	  "data": {"values": [{"a": 1, "b": 2}]},
	  "layer": [
	    {"mark": "point", "encoding": {"x": {"field": "a", "type": "ordinal"}}},
	    {"mark": "rule", "encoding": {"x": {"field": "b", "type": "ordinal"}}}
	  ]
	}`)

	for _, name := range []string{"layer_0_marks", "layer_1_marks"} {
		if _, ok := g.Mark(name); !ok {
			t.Errorf("missing mark %s", name)
		}
	}
	x, _ := g.Scale("x")
	if got, want := jsonOf(t, x.Domain), `{"data":"data_0","fields":["a","b"],"sort":true}`; got != want {
		t.Errorf("shared x domain = %s, want %s", got, want)
	}
	if len(g.Scales) != 1 {
		t.Errorf("len(Scales) = %d, want 1", len(g.Scales))
	}
}

func TestReferenceVConcat(t *testing.T) {
	g := compileRef(t, `{
	  "data": {"values": [{"a": 1, "b": 2}]},
	  "vconcat": [
	    {"mark": "point", "encoding": {"x": {"field": "a", "type": "quantitative"}}},
	    {"mark": "point", "encoding": {"x": {"field": "b", "type": "quantitative"}}}
	  ]
	}`)

	for i, name := range []string{"concat_0_group", "concat_1_group"} {
		group, ok := g.Mark(name)
		if !ok {
			t.Fatalf("missing group %s", name)
		}
		if len(group.Marks) != 1 || group.Marks[0].Name != []string{"concat_0_marks", "concat_1_marks"}[i] {
			t.Errorf("%s marks = %+v", name, group.Marks)
		}
		if _, ok := group.Extra["axes"]; !ok {
			t.Errorf("%s has no axes", name)
		}
	}
	for _, name := range []string{"concat_0_x", "concat_1_x"} {
		if _, ok := g.Scale(name); !ok {
			t.Errorf("missing scale %s", name)
		}
	}
	if _, ok := g.Signal("childWidth"); !ok {
		t.Error("missing childWidth")
	}
}

func TestReferencePathGroup(t *testing.T) {
	g := compileRef(t, `{
	  "data": {"values": [{"t": 1, "v": 2, "s": "a"}]},
	  "mark": "line",
	  "encoding": {
	    "x": {"field": "t", "type": "quantitative"},
	    "y": {"field": "v", "type": "quantitative"},
	    "color": {"field": "s", "type": "nominal"}
	  }
	}`)

	group, ok := g.Mark("pathgroup")
	if !ok {
		t.Fatal("missing pathgroup")
	}
	if !group.Faceted() {
		t.Fatal("pathgroup is not faceted")
	}
	if group.From.Facet.Name != "faceted_path_main" || group.From.Facet.Data != "data_0" {
		t.Errorf("facet = %+v", group.From.Facet)
	}
	inner := group.Primary()
	if inner == nil || inner.Name != "marks" || inner.Dataset() != "faceted_path_main" {
		t.Errorf("inner mark = %+v", inner)
	}
}

func TestReferenceStack(t *testing.T) {
	g := compileRef(t, `{
	  "data": {"values": [{"c": "a", "v": 2, "s": "x"}]},
	  "mark": "bar",
	  "encoding": {
	    "x": {"field": "c", "type": "nominal"},
	    "y": {"field": "v", "type": "quantitative"},
	    "color": {"field": "s", "type": "nominal"}
	  }
	}`)

	d, _ := g.Dataset("data_0")
	var stack vega.Object
	for _, tr := range d.Transform {
		if tr["type"] == "stack" {
			stack = tr
		}
	}
	if stack == nil {
		t.Fatalf("no stack transform in %s", jsonOf(t, d.Transform))
	}
	if got, want := jsonOf(t, stack["as"]), `["v_start","v_end"]`; got != want {
		t.Errorf("stack as = %s, want %s", got, want)
	}

	m, _ := g.Mark("marks")
	update := m.Encode[vega.EncodeUpdate]
	if got, want := jsonOf(t, update["y"]), `{"field":"v_end","scale":"y"}`; got != want {
		t.Errorf("y = %s, want %s", got, want)
	}
	if got, want := jsonOf(t, update["width"]), `{"band":1,"scale":"x"}`; got != want {
		t.Errorf("width = %s, want %s", got, want)
	}
	x, _ := g.Scale("x")
	if x.Type != "band" {
		t.Errorf("x type = %q, want band", x.Type)
	}
}

func TestReferenceTransforms(t *testing.T) {
	tests := []struct {
		name      string
		transform string
		want      string
		code      errors.Code
	}{
		{
			name:      "calculate",
			transform: `{"calculate": "datum.a * 2", "as": "b"}`,
			want:      `{"as":"b","expr":"datum.a * 2","type":"formula"}`,
		},
		{
			name:      "expression filter",
			transform: `{"filter": "datum.a > 1"}`,
			want:      `{"expr":"datum.a > 1","type":"filter"}`,
		},
		{
			name:      "field predicate",
			transform: `{"filter": {"field": "a", "lte": 3}}`,
			want:      `{"expr":"datum[\"a\"] <= 3","type":"filter"}`,
		},
		{
			name:      "selection filter",
			transform: `{"filter": {"param": "pick"}}`,
			want:      `{"expr":"!length(data(\"pick_store\")) || vlSelectionTest(\"pick_store\", datum)","type":"filter"}`,
		},
		{
			name:      "unsupported",
			transform: `{"aggregate": [{"op": "count", "as": "n"}]}`,
			code:      errors.ErrCodeUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"data": {"values": []}, "mark": "point", "transform": [` + tt.transform + `]}`
			g, err := (&Reference{}).Compile(context.Background(), []byte(doc))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			d, _ := g.Dataset("data_0")
			if len(d.Transform) != 1 {
				t.Fatalf("transforms = %s", jsonOf(t, d.Transform))
			}
			if got := jsonOf(t, d.Transform[0]); got != tt.want {
				t.Errorf("transform = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReferencePointSelection(t *testing.T) {
	g := compileRef(t, `{
	  "data": {"values": [{"year": 2000, "v": 1}]},
	  "params": [{"name": "pick", "select": {"type": "point", "fields": ["year"]}}],
	  "mark": "point",
	  "encoding": {"x": {"field": "v", "type": "quantitative"}}
	}`)

	if _, ok := g.Dataset("pick_store"); !ok {
		t.Error("missing pick_store")
	}
	for _, name := range []string{"unit", "pick_tuple_fields", "pick_tuple", "pick_toggle", "pick_modify"} {
		if _, ok := g.Signal(name); !ok {
			t.Errorf("missing signal %s", name)
		}
	}
	fields, _ := g.Signal("pick_tuple_fields")
	if got, want := jsonOf(t, fields.Value), `[{"field":"year","type":"E"}]`; got != want {
		t.Errorf("pick_tuple_fields = %s, want %s", got, want)
	}
}

func TestReferenceErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"interval selection", `{"data": {"values": []}, "mark": "point", "params": [{"name": "b", "select": "interval"}]}`, errors.ErrCodeUnsupported},
		{"unknown mark", `{"data": {"values": []}, "mark": "arc"}`, errors.ErrCodeUnsupported},
		{"no data", `{"mark": "point"}`, errors.ErrCodeBaseCompiler},
		{"malformed", `{"mark":`, errors.ErrCodeInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Reference{}).Compile(context.Background(), []byte(tt.doc))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReferenceNamedData(t *testing.T) {
	g := compileRef(t, `{"data": {"name": "table"}, "mark": "point"}`)
	d, ok := g.Dataset("data_0")
	if !ok || d.Source != "table" {
		t.Errorf("data_0 = %+v, want source table", d)
	}
	if _, ok := g.Dataset("table"); !ok {
		t.Error("missing table dataset")
	}
}
