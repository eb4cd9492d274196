package spec

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/vlanimate/pkg/errors"
)

const gapminder = `{
  "data": {"url": "data/gapminder.json"},
  "width": 600,
  "mark": "point",
  "params": [
    {"name": "brush", "select": "interval"},
    {"name": "avl", "select": {"type": "point", "on": "timer", "easing": "easeCubicInOut"}}
  ],
  "transform": [{"filter": {"param": "avl"}}, {"calculate": "datum.pop / 1e6", "as": "m"}],
  "encoding": {
    "x": {"field": "fertility", "type": "quantitative"},
    "y": {"field": "life_expect", "type": "quantitative"},
    "color": {"field": "country", "type": "nominal"},
    "time": {"field": "year", "scale": {"type": "band", "range": {"step": 500}}, "key": {"field": "country"}}
  }
}`

func mustParse(t *testing.T, doc string) Spec {
	t.Helper()
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unit", `{"mark": "bar"}`, "*spec.Unit"},
		{"layer", `{"layer": [{"mark": "line"}, {"mark": "point"}]}`, "*spec.Layer"},
		{"vconcat", `{"vconcat": [{"mark": "bar"}, {"mark": "point"}]}`, "*spec.VConcat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParse(t, tt.doc)
			if got := reflect.TypeOf(s).String(); got != tt.want {
				t.Errorf("Parse() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"layered vconcat", `{"layer": [{"vconcat": []}]}`},
		{"layer inside vconcat", `{"vconcat": [{"layer": []}]}`},
		{"bad range", `{"mark": "bar", "encoding": {"time": {"field": "t", "scale": {"range": {"width": 3}}}}}`},
		{"unsupported bind", `{"mark": "bar", "params": [{"name": "p", "select": {"type": "point", "on": {"type": "timer"}, "bind": "legend"}, "bind": "legend"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidSpec) {
				t.Errorf("code = %v, want INVALID_SPEC", errors.GetCode(err))
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	u := mustParse(t, gapminder).(*Unit)

	if u.MarkType() != "point" {
		t.Errorf("MarkType() = %q", u.MarkType())
	}
	if _, ok := u.Extra["data"]; !ok {
		t.Error("data not preserved")
	}
	if _, ok := u.Extra["width"]; !ok {
		t.Error("width not preserved")
	}

	time := u.Time()
	if time == nil || time.Field != "year" {
		t.Fatalf("time = %+v", time)
	}
	if !time.Scale.Range.StepLike() || *time.Scale.Range.Step != 500 {
		t.Errorf("range = %+v", time.Scale.Range)
	}
	if !time.Keyed() || time.Key.Field != "country" || time.Loop() {
		t.Errorf("key = %+v", time.Key)
	}

	sels := Selections(u.Params)
	if len(sels) != 1 || sels[0].Name != "avl" {
		t.Fatalf("selections = %+v", sels)
	}
	if sels[0].EasingName() != "easeCubicInOut" {
		t.Errorf("easing = %q", sels[0].EasingName())
	}
	if u.Params[0].Animation != nil || u.Params[0].Name() != "brush" {
		t.Errorf("interval param parsed as animation: %+v", u.Params[0])
	}
	if got := AnimationFilters(u.Transform, sels); !reflect.DeepEqual(got, []string{"avl"}) {
		t.Errorf("AnimationFilters() = %v", got)
	}

	c, ok := u.Encoding.Channel("color")
	if !ok || c.Field != "country" || c.Type != "nominal" {
		t.Errorf("color = %+v", c)
	}
	if !reflect.DeepEqual(u.Encoding.Names(), []string{"color", "x", "y"}) {
		t.Errorf("Names() = %v", u.Encoding.Names())
	}
}

func TestUnitRoundTrip(t *testing.T) {
	s := mustParse(t, gapminder)
	out, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var want, got any
	if err := json.Unmarshal([]byte(gapminder), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("round trip changed the spec:\n%s", out)
	}
}

func TestTriggerForms(t *testing.T) {
	tests := []struct {
		in         string
		filter     []string
		normalized bool
	}{
		{`"timer"`, nil, false},
		{`{"type": "timer"}`, nil, false},
		{`{"type": "timer", "filter": "is_playing"}`, []string{"is_playing"}, false},
		{`{"type": "timer", "filter": ["a", "b"]}`, []string{"a", "b"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var trig Trigger
			if err := json.Unmarshal([]byte(tt.in), &trig); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(trig.Filter, tt.filter) {
				t.Errorf("Filter = %v, want %v", trig.Filter, tt.filter)
			}
			if trig.Normalized() != tt.normalized {
				t.Errorf("Normalized() = %v", trig.Normalized())
			}
			out, err := json.Marshal(trig)
			if err != nil {
				t.Fatal(err)
			}
			var a, b any
			_ = json.Unmarshal([]byte(tt.in), &a)
			_ = json.Unmarshal(out, &b)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Marshal() = %s, want %s", out, tt.in)
			}
		})
	}

	norm, _ := json.Marshal(TimerTrigger())
	if string(norm) != `{"filter":[],"type":"timer"}` {
		t.Errorf("TimerTrigger() = %s", norm)
	}
}

func TestPredicateTupleTypes(t *testing.T) {
	var p Predicate
	doc := `{"and": [
		{"field": "a", "equal": 0},
		{"field": "b", "lt": 1},
		{"field": "c", "gt": 1},
		{"field": "d", "lte": 1},
		{"field": "e", "gte": 1},
		{"field": "f", "range": [0, 1]},
		{"field": "g", "oneOf": [1, 2]},
		{"field": "h", "valid": true}
	]}`
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatal(err)
	}
	want := []string{"E", "E-LT", "E-GT", "E-LTE", "E-GTE", "R", "E", "E-VALID"}
	var got []string
	for _, f := range p.Fields() {
		got = append(got, f.TupleType())
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tuple types = %v, want %v", got, want)
	}
	if !p.Conjunction() {
		t.Error("Conjunction() = false")
	}

	var single Predicate
	if err := json.Unmarshal([]byte(`{"field": "year", "lte": 2000}`), &single); err != nil {
		t.Fatal(err)
	}
	if single.Conjunction() || len(single.Fields()) != 1 || single.Fields()[0].TupleType() != TupleLessEqual {
		t.Errorf("single = %+v", single)
	}
}

func TestKeyFalse(t *testing.T) {
	var te TimeEncoding
	if err := json.Unmarshal([]byte(`{"field": "t", "key": false}`), &te); err != nil {
		t.Fatal(err)
	}
	if te.Key == nil || !te.Key.Disabled || te.Keyed() {
		t.Errorf("key = %+v", te.Key)
	}
	out, _ := json.Marshal(te)
	if !strings.Contains(string(out), `"key":false`) {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestEasingPoints(t *testing.T) {
	var e Easing
	if err := json.Unmarshal([]byte(`[0, 0.1, 0.9, 1]`), &e); err != nil {
		t.Fatal(err)
	}
	if e.Name != "" || !reflect.DeepEqual(e.Points, []float64{0, 0.1, 0.9, 1}) {
		t.Errorf("easing = %+v", e)
	}
}

func TestOverride(t *testing.T) {
	parent := &TimeEncoding{Field: "year", Scale: &TimeScale{Type: ScaleBand}, Rescale: boolPtr(true)}
	child := &TimeEncoding{Key: &Key{Field: "country"}}

	got := parent.Override(child)
	if got.Field != "year" || got.Scale.Type != ScaleBand || !got.RescaleEnabled() || got.Key.Field != "country" {
		t.Errorf("Override() = %+v", got)
	}
	got.Scale.Type = ScaleLinear
	if parent.Scale.Type != ScaleBand {
		t.Error("Override shares the parent scale")
	}
}

func TestScopeNames(t *testing.T) {
	tests := []struct {
		id        ScopeID
		suffix    string
		selection string
	}{
		{Root, "", "current_frame_0"},
		{Root.Child("concat", 1), "_concat_1", "current_frame_concat_1"},
		{Root.Child("layer", 0).Child("layer", 2), "_layer_0_layer_2", "current_frame_layer_0_layer_2"},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := tt.id.Suffix(); got != tt.suffix {
				t.Errorf("Suffix() = %q, want %q", got, tt.suffix)
			}
			if got := tt.id.DefaultSelection(); got != tt.selection {
				t.Errorf("DefaultSelection() = %q, want %q", got, tt.selection)
			}
		})
	}
}
