package timeline

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
)

// Row is one datum of the animated dataset.
type Row = map[string]any

// Frame is the state of the clock signals at one clock reading.
type Frame struct {
	Clock float64 // anim_clock
	Eased float64 // eased_anim_clock
	Index int     // t_index
	Value any     // anim_value

	Current any // anim_val_curr
	Next    any // anim_val_next

	// Tween is the progress in [0, 1] from Current to Next.
	Tween float64
}

// Timeline maps clock readings to frames for one animated scope.
type Timeline struct {
	Field string
	Type  string // spec.ScaleBand or spec.ScaleLinear

	// Keyframes are the time values in playback order.
	Keyframes []any

	// Duration is the clock value at which playback wraps (max_range_extent).
	Duration float64

	Loop   bool
	Ease   Easer
	Pauses []spec.Pause

	// Band geometry.
	start, bandwidth float64

	// Linear geometry: the time domain and the clock range it maps to.
	d0, d1, r0, r1 float64
}

// New builds the timeline of an elaborated time encoding over rows. driver
// is the scope's driving animation selection and may be nil.
func New(t *spec.TimeEncoding, driver *spec.AnimationSelection, rows []Row) (*Timeline, error) {
	if t == nil || t.Field == "" {
		return nil, errors.MissingField("time encoding", "field")
	}
	easer, err := EasingOf(driver)
	if err != nil {
		return nil, err
	}
	tl := &Timeline{
		Field: t.Field,
		Type:  t.ScaleType(),
		Loop:  t.Loop(),
		Ease:  easer,
	}
	if driver != nil {
		tl.Pauses = driver.Select.Pause
	}

	if t.Scale != nil && len(t.Scale.Domain) > 0 && tl.Type != spec.ScaleLinear {
		tl.Keyframes = slices.Clone(t.Scale.Domain)
	} else {
		tl.Keyframes = distinct(rows, t.Field)
	}
	if len(tl.Keyframes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no values for time field %q", t.Field)
	}

	var r *spec.TimeRange
	if t.Scale != nil {
		r = t.Scale.Range
	}
	if tl.Type == spec.ScaleLinear {
		err = tl.linear(t, r)
	} else {
		err = tl.band(r)
	}
	if err != nil {
		return nil, err
	}
	return tl, nil
}

func (tl *Timeline) band(r *spec.TimeRange) error {
	n := float64(len(tl.Keyframes))
	switch {
	case r == nil:
		tl.bandwidth = 500
	case r.StepLike():
		tl.bandwidth = *r.Step
	default:
		lo, hi, err := rangeBounds(r)
		if err != nil {
			return err
		}
		tl.start = lo
		tl.bandwidth = (hi - lo) / n
	}
	tl.Duration = tl.start + tl.bandwidth*n
	return nil
}

func (tl *Timeline) linear(t *spec.TimeEncoding, r *spec.TimeRange) error {
	nums, err := numbers(tl.Keyframes)
	if err != nil {
		return fmt.Errorf("linear time scale: %w", err)
	}
	tl.d0, tl.d1 = nums[0], nums[len(nums)-1]
	if t.Scale != nil && len(t.Scale.Domain) >= 2 {
		explicit, err := numbers(t.Scale.Domain)
		if err != nil {
			return fmt.Errorf("linear time domain: %w", err)
		}
		tl.d0, tl.d1 = explicit[0], explicit[len(explicit)-1]
	}
	if t.Scale != nil && t.Scale.Zero != nil && *t.Scale.Zero {
		tl.d0, tl.d1 = math.Min(0, tl.d0), math.Max(0, tl.d1)
	}

	tl.r0, tl.r1 = 0, 5000
	if r != nil && !r.StepLike() {
		if tl.r0, tl.r1, err = rangeBounds(r); err != nil {
			return err
		}
	}
	tl.Duration = math.Max(tl.r0, tl.r1)
	return nil
}

// At returns the frame at a clock reading.
func (tl *Timeline) At(clock float64) Frame {
	f := Frame{Clock: clock, Eased: clock}
	if tl.Duration > 0 {
		f.Eased = tl.Ease(clock/tl.Duration) * tl.Duration
	}

	if tl.Type == spec.ScaleLinear {
		value := tl.invert(f.Eased)
		f.Value = value
		f.Index = 0
		for i, k := range tl.Keyframes {
			if v, _ := number(k); v <= value {
				f.Index = i
			}
		}
	} else {
		f.Index = 0
		if tl.bandwidth > 0 {
			i := int(math.Floor((f.Eased - tl.start) / tl.bandwidth))
			if i >= 0 && i < len(tl.Keyframes) {
				f.Index = i
			}
		}
		f.Value = tl.Keyframes[f.Index]
	}
	f.Current = tl.Keyframes[f.Index]
	f.Next = tl.next(f.Index)
	f.Tween = tl.tween(f)
	return f
}

func (tl *Timeline) next(i int) any {
	if i+1 < len(tl.Keyframes) {
		return tl.Keyframes[i+1]
	}
	lo, hi := extent(tl.Keyframes)
	if tl.Loop {
		return lo
	}
	return hi
}

func (tl *Timeline) tween(f Frame) float64 {
	if tl.Type != spec.ScaleLinear {
		if tl.bandwidth <= 0 {
			return 0
		}
		return clamp((f.Eased-(tl.start+float64(f.Index)*tl.bandwidth))/tl.bandwidth, 0, 1)
	}
	curr, _ := number(f.Current)
	next, _ := number(f.Next)
	sc, sn := tl.scale(curr), tl.scale(next)
	end := tl.Duration
	if sn > sc {
		end = sn
	}
	span := end - sc
	if span <= 0 {
		return 0
	}
	return clamp((f.Eased-sc)/span, 0, 1)
}

func (tl *Timeline) scale(v float64) float64 {
	if tl.d1 == tl.d0 {
		return tl.r0
	}
	return tl.r0 + (v-tl.d0)/(tl.d1-tl.d0)*(tl.r1-tl.r0)
}

func (tl *Timeline) invert(ms float64) float64 {
	if tl.r1 == tl.r0 {
		return tl.d0
	}
	return tl.d0 + (ms-tl.r0)/(tl.r1-tl.r0)*(tl.d1-tl.d0)
}

// PauseFor returns how long playback holds on a keyframe value, or 0.
func (tl *Timeline) PauseFor(value any) float64 {
	for _, p := range tl.Pauses {
		if equal(p.Value, value) {
			return p.Duration
		}
	}
	return 0
}

// ============================================================================
// Values
// ============================================================================

// distinct returns the distinct values of field in rows, sorted.
func distinct(rows []Row, field string) []any {
	var out []any
	for _, r := range rows {
		v, ok := r[field]
		if !ok || v == nil {
			continue
		}
		if !slices.ContainsFunc(out, func(o any) bool { return equal(o, v) }) {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, compare)
	return out
}

func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func numbers(vs []any) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		n, ok := number(v)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "value %v is not a number", v)
		}
		out[i] = n
	}
	return out, nil
}

func rangeBounds(r *spec.TimeRange) (float64, float64, error) {
	nums, err := numbers(r.Values)
	if err != nil || len(nums) < 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidSpec, "time range must be a step or two numbers")
	}
	return nums[0], nums[len(nums)-1], nil
}

// compare orders numbers numerically, before everything else, which is
// ordered by its printed form.
func compare(a, b any) int {
	x, aNum := number(a)
	y, bNum := number(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(x, y)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func equal(a, b any) bool { return compare(a, b) == 0 }

func extent(vs []any) (any, any) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if compare(v, lo) < 0 {
			lo = v
		}
		if compare(v, hi) > 0 {
			hi = v
		}
	}
	return lo, hi
}
