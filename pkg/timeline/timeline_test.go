package timeline

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/vlanimate/pkg/elaborate"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
)

// scope elaborates a unit and returns its time encoding and driving selection.
func scope(t *testing.T, doc string) (*spec.TimeEncoding, *spec.AnimationSelection) {
	t.Helper()
	s, err := spec.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	u := elaborate.Elaborate(s).(*spec.Unit)
	sels := spec.Selections(u.Params)
	if len(sels) == 0 {
		t.Fatal("no animation selection")
	}
	return u.Time(), sels[0]
}

func build(t *testing.T, doc string, rows []Row) *Timeline {
	t.Helper()
	time, driver := scope(t, doc)
	tl, err := New(time, driver, rows)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tl
}

const bandDoc = `{"mark": "point", "encoding": {"time": {"field": "year", "scale": {"type": "band", "domain": [2000, 2001, 2002]}}}}`

func TestBand(t *testing.T) {
	tl := build(t, bandDoc, nil)
	if tl.Duration != 1500 {
		t.Fatalf("Duration = %v, want 1500", tl.Duration)
	}

	tests := []struct {
		clock   float64
		index   int
		current any
		next    any
		tween   float64
	}{
		{0, 0, 2000.0, 2001.0, 0},
		{250, 0, 2000.0, 2001.0, 0.5},
		{750, 1, 2001.0, 2002.0, 0.5},
		{1250, 2, 2002.0, 2002.0, 0.5},
		{1500, 0, 2000.0, 2001.0, 1},
	}
	for _, tt := range tests {
		f := tl.At(tt.clock)
		if f.Index != tt.index || f.Current != tt.current || f.Next != tt.next || math.Abs(f.Tween-tt.tween) > 1e-6 {
			t.Errorf("At(%v) = %+v, want index %d current %v next %v tween %v",
				tt.clock, f, tt.index, tt.current, tt.next, tt.tween)
		}
		if f.Value != f.Current {
			t.Errorf("At(%v): value %v != current %v", tt.clock, f.Value, f.Current)
		}
	}
}

func TestBandLoop(t *testing.T) {
	tl := build(t, `{"mark": "point", "encoding": {"time": {
		"field": "year", "key": {"field": "k", "loop": true},
		"scale": {"type": "band", "domain": [2000, 2001, 2002], "range": {"step": 100}}
	}}}`, nil)
	if tl.Duration != 300 {
		t.Errorf("Duration = %v, want 300", tl.Duration)
	}
	if f := tl.At(250); f.Next != 2000.0 {
		t.Errorf("next after the last keyframe = %v, want 2000", f.Next)
	}
}

func TestBandFromRows(t *testing.T) {
	rows := []Row{{"year": 2002.0}, {"year": 2000.0}, {"year": 2001.0}, {"year": 2000.0}, {"other": 1.0}}
	tl := build(t, `{"mark": "point", "encoding": {"time": {"field": "year"}}}`, rows)
	if want := []any{2000.0, 2001.0, 2002.0}; !reflect.DeepEqual(tl.Keyframes, want) {
		t.Errorf("Keyframes = %v, want %v", tl.Keyframes, want)
	}
	if tl.Duration != 1500 {
		t.Errorf("Duration = %v, want 1500", tl.Duration)
	}
}

func TestLinear(t *testing.T) {
	rows := []Row{{"year": 2000.0}, {"year": 2005.0}, {"year": 2010.0}}
	tl := build(t, `{"mark": "point", "encoding": {"time": {"field": "year", "scale": {"type": "linear"}}}}`, rows)
	if tl.Duration != 5000 {
		t.Fatalf("Duration = %v, want 5000", tl.Duration)
	}

	tests := []struct {
		clock   float64
		value   float64
		current any
		next    any
		tween   float64
	}{
		{0, 2000, 2000.0, 2005.0, 0},
		{1250, 2002.5, 2000.0, 2005.0, 0.5},
		{2500, 2005, 2005.0, 2010.0, 0},
		{3750, 2007.5, 2005.0, 2010.0, 0.5},
		{5000, 2010, 2010.0, 2010.0, 0},
	}
	for _, tt := range tests {
		f := tl.At(tt.clock)
		if f.Value != tt.value || f.Current != tt.current || f.Next != tt.next || f.Tween != tt.tween {
			t.Errorf("At(%v) = %+v, want value %v current %v next %v tween %v",
				tt.clock, f, tt.value, tt.current, tt.next, tt.tween)
		}
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		time *spec.TimeEncoding
		rows []Row
		code errors.Code
	}{
		{"no time", nil, nil, errors.ErrCodeMissingField},
		{"no field", &spec.TimeEncoding{}, nil, errors.ErrCodeMissingField},
		{"no values", &spec.TimeEncoding{Field: "t"}, nil, errors.ErrCodeInvalidInput},
		{
			"linear strings",
			&spec.TimeEncoding{Field: "t", Scale: &spec.TimeScale{Type: spec.ScaleLinear}},
			[]Row{{"t": "a"}},
			errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.time, nil, tt.rows)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEasing(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"easeLinear", 0.25, 0.25},
		{"easeQuadIn", 0.5, 0.25},
		{"easeCubicInOut", 0, 0},
		{"easeCubicInOut", 1, 1},
	}
	for _, tt := range tests {
		fn, err := Named(tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if got := fn(tt.t); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.t, got, tt.want)
		}
	}
	if _, err := Named("easeNope"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Named(easeNope) error = %v, want UNSUPPORTED", err)
	}
}

func TestEasedClock(t *testing.T) {
	tl := build(t, `{
		"params": [{"name": "p", "select": {"type": "point", "on": "timer", "easing": "easeQuadIn"}}],
		"transform": [{"filter": {"param": "p"}}],
		"mark": "point",
		"encoding": {"time": {"field": "year", "scale": {"type": "band", "domain": [1, 2]}}}
	}`, nil)
	// Half way through the clock is a quarter of the way through the range.
	if f := tl.At(500); math.Abs(f.Eased-250) > 1e-3 || f.Index != 0 {
		t.Errorf("At(500) = %+v, want eased 250 in the first band", f)
	}
}

func TestCatmullRom(t *testing.T) {
	tests := []struct {
		values []float64
		t      float64
		want   float64
	}{
		{[]float64{5}, 0.7, 5},
		{[]float64{0, 1}, 0, 0},
		{[]float64{0, 1}, 0.5, 0.5},
		{[]float64{0, 1}, 1, 1},
		{[]float64{0, 10, 20}, 0.5, 10},
		{[]float64{0, 10, 20}, 2, 20},
	}
	for _, tt := range tests {
		if got := CatmullRom(tt.values, tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CatmullRom(%v, %v) = %v, want %v", tt.values, tt.t, got, tt.want)
		}
	}
	if !math.IsNaN(CatmullRom(nil, 0.5)) {
		t.Error("CatmullRom(nil) is not NaN")
	}
}
