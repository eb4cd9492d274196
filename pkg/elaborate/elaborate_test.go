package elaborate

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/matzehuels/vlanimate/pkg/spec"
)

func parse(t *testing.T, doc string) spec.Spec {
	t.Helper()
	s, err := spec.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func marshal(t *testing.T, s spec.Spec) []byte {
	t.Helper()
	out, err := spec.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return out
}

var docs = map[string]string{
	"unit": `{"mark": "point", "encoding": {"x": {"field": "v"}, "time": {"field": "year"}}}`,
	"unit with selection": `{
		"mark": "circle",
		"params": [{"name": "avl", "select": {"type": "point", "on": "timer"}, "bind": {"input": "range"}}],
		"transform": [{"filter": {"param": "avl"}}],
		"encoding": {"color": {"field": "c"}, "time": {"field": "t", "scale": {"domain": [0, 10]}}}
	}`,
	"owned layer": `{
		"encoding": {"time": {"field": "year", "key": {"field": "country"}}},
		"layer": [{"mark": "line"}, {"mark": "point"}, {"encoding": {"x": {"field": "a"}}}]
	}`,
	"distributed layer": `{
		"encoding": {"time": {"field": "year", "rescale": true}},
		"layer": [
			{"mark": "point", "encoding": {"time": {"field": "month"}}},
			{"mark": "text"}
		]
	}`,
	"vconcat": `{"vconcat": [
		{"mark": "bar", "encoding": {"x": {"field": "k", "type": "nominal"}, "time": {"field": "t"}}},
		{"mark": "point", "encoding": {"time": {"field": "t"}}}
	]}`,
	"static": `{"mark": "bar", "encoding": {"x": {"field": "a"}}}`,
}

func TestElaborateIdempotent(t *testing.T) {
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			once := Elaborate(parse(t, doc))
			twice := Elaborate(once)
			if a, b := marshal(t, once), marshal(t, twice); !bytes.Equal(a, b) {
				t.Errorf("not idempotent:\nonce:\n%s\ntwice:\n%s", a, b)
			}
		})
	}
}

func TestElaborateDoesNotModifyInput(t *testing.T) {
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			in := parse(t, doc)
			before := marshal(t, in)
			Elaborate(in)
			if after := marshal(t, in); !bytes.Equal(before, after) {
				t.Errorf("input modified:\n%s", after)
			}
		})
	}
}

func TestElaborateUnitDefaults(t *testing.T) {
	u := Elaborate(parse(t, docs["unit"])).(*spec.Unit)

	time := u.Time()
	if time.Scale.Type != spec.ScaleBand {
		t.Errorf("scale type = %q, want band", time.Scale.Type)
	}
	if !time.Scale.Range.StepLike() || *time.Scale.Range.Step != DefaultBandStep {
		t.Errorf("range = %+v", time.Scale.Range)
	}
	if time.Key == nil || !time.Key.Disabled {
		t.Errorf("key = %+v, want false", time.Key)
	}
	if time.Rescale == nil || *time.Rescale {
		t.Errorf("rescale = %v, want false", time.Rescale)
	}

	sels := spec.Selections(u.Params)
	if len(sels) != 1 || sels[0].Name != "current_frame_0" {
		t.Fatalf("selections = %+v", sels)
	}
	if sels[0].EasingName() != spec.DefaultEasing || !sels[0].Select.On.Normalized() {
		t.Errorf("selection not normalized: %+v", sels[0].Select)
	}
	if got := spec.AnimationFilters(u.Transform, sels); !reflect.DeepEqual(got, []string{"current_frame_0"}) {
		t.Errorf("filters = %v", got)
	}
}

func TestElaborateDeclaredSelection(t *testing.T) {
	u := Elaborate(parse(t, docs["unit with selection"])).(*spec.Unit)

	time := u.Time()
	if time.Scale.Type != spec.ScaleLinear {
		t.Errorf("scale type = %q, want linear", time.Scale.Type)
	}
	if !reflect.DeepEqual(time.Scale.Range.Values, []any{0.0, 5000.0}) {
		t.Errorf("range = %v", time.Scale.Range.Values)
	}
	if time.Scale.Zero == nil || *time.Scale.Zero {
		t.Errorf("zero = %v, want false", time.Scale.Zero)
	}
	if !time.Keyed() || time.Key.Field != "c" || time.Loop() {
		t.Errorf("key = %+v", time.Key)
	}

	sels := spec.Selections(u.Params)
	if len(sels) != 1 || sels[0].Name != "avl" {
		t.Fatalf("selections = %+v", sels)
	}
	if !reflect.DeepEqual(sels[0].Select.On.Filter, []string{"is_playing"}) {
		t.Errorf("filter = %v", sels[0].Select.On.Filter)
	}
	if len(u.Transform) != 1 {
		t.Errorf("transforms = %d, want the declared filter only", len(u.Transform))
	}
}

func TestKeyHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		mark     string
		encoding string
		want     string
	}{
		{"bar nominal x", "bar", `{"x": {"field": "k", "type": "nominal"}, "y": {"field": "v", "type": "quantitative"}}`, "k"},
		{"bar nominal y", "bar", `{"x": {"field": "v", "type": "quantitative"}, "y": {"field": "k", "type": "nominal"}, "color": {"field": "c"}}`, "k"},
		{"bar quantitative falls to color", "bar", `{"x": {"field": "v", "type": "quantitative"}, "color": {"field": "c"}}`, "c"},
		{"point ignores nominal x", "point", `{"x": {"field": "k", "type": "nominal"}, "detail": {"field": "d"}}`, "d"},
		{"color before detail", "point", `{"color": {"field": "c"}, "detail": {"field": "d"}}`, "c"},
		{"nothing", "point", `{"x": {"field": "v"}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := parse(t, `{"mark": "`+tt.mark+`", "encoding": `+tt.encoding+`}`).(*spec.Unit)
			got := TimeEncoding(&spec.TimeEncoding{Field: "t"}, u.MarkType(), u.Encoding)
			if tt.want == "" {
				if !got.Key.Disabled {
					t.Errorf("key = %+v, want false", got.Key)
				}
				return
			}
			if got.Key.Field != tt.want || got.Key.Loop == nil || *got.Key.Loop {
				t.Errorf("key = %+v, want {%s false}", got.Key, tt.want)
			}
		})
	}
}

func TestKeyLoopPreserved(t *testing.T) {
	loop := true
	got := TimeEncoding(&spec.TimeEncoding{Field: "t", Key: &spec.Key{Field: "id", Loop: &loop}}, "point")
	if !got.Loop() {
		t.Error("loop: true lost")
	}
}

func TestElaborateOwnedLayer(t *testing.T) {
	l := Elaborate(parse(t, docs["owned layer"])).(*spec.Layer)

	time := l.Time()
	if time == nil || time.Field != "year" || time.Key.Field != "country" {
		t.Fatalf("layer time = %+v", time)
	}
	sels := spec.Selections(l.Params)
	if len(sels) != 1 || sels[0].Name != "current_frame_0" {
		t.Fatalf("layer selections = %+v", sels)
	}
	for i, c := range l.Layer {
		u := c.(*spec.Unit)
		if u.Time() != nil {
			t.Errorf("child %d received a time encoding", i)
		}
		filters := spec.AnimationFilters(u.Transform, sels)
		if u.HasMark() && len(filters) != 1 {
			t.Errorf("child %d filters = %v", i, filters)
		}
		if !u.HasMark() && len(filters) != 0 {
			t.Errorf("unmarked child %d filtered", i)
		}
	}
}

func TestElaborateDistributedLayer(t *testing.T) {
	l := Elaborate(parse(t, docs["distributed layer"])).(*spec.Layer)

	if l.Time() != nil {
		t.Error("layer time not removed")
	}
	tests := []struct {
		field     string
		selection string
	}{
		{"month", "current_frame_layer_0"},
		{"year", "current_frame_layer_1"},
	}
	for i, tt := range tests {
		u := l.Layer[i].(*spec.Unit)
		time := u.Time()
		if time == nil || time.Field != tt.field {
			t.Errorf("child %d time = %+v, want field %s", i, time, tt.field)
			continue
		}
		if !time.RescaleEnabled() {
			t.Errorf("child %d did not inherit rescale", i)
		}
		sels := spec.Selections(u.Params)
		if len(sels) != 1 || sels[0].Name != tt.selection {
			t.Errorf("child %d selections = %+v, want %s", i, sels, tt.selection)
		}
	}
}

func TestElaborateVConcat(t *testing.T) {
	v := Elaborate(parse(t, docs["vconcat"])).(*spec.VConcat)

	for i, want := range []string{"current_frame_concat_0", "current_frame_concat_1"} {
		sels := spec.Selections(v.VConcat[i].Params)
		if len(sels) != 1 || sels[0].Name != want {
			t.Errorf("child %d selections = %+v, want %s", i, sels, want)
		}
	}
	if key := v.VConcat[0].Time().Key; key.Field != "k" {
		t.Errorf("bar key = %+v, want k", key)
	}
}

func TestElaborateStaticUnchanged(t *testing.T) {
	in := parse(t, docs["static"])
	out := Elaborate(in)
	if !bytes.Equal(marshal(t, in), marshal(t, out)) {
		t.Error("static spec changed")
	}
}

func TestParamsSliderOnce(t *testing.T) {
	params := []spec.Param{{Animation: &spec.AnimationSelection{
		Name:   "s",
		Select: spec.AnimationSelect{Type: "point", On: spec.TimerTrigger("ready")},
		Bind:   &spec.Bind{Input: map[string]any{"input": "range"}},
	}}}
	id := spec.Root.Child("concat", 2)
	params = Params(params, id)
	params = Params(params, id)

	want := []string{"ready", "is_playing_concat_2"}
	if got := params[0].Animation.Select.On.Filter; !reflect.DeepEqual(got, want) {
		t.Errorf("filter = %v, want %v", got, want)
	}
}
