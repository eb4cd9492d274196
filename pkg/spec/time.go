package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

// Time scale types.
const (
	ScaleBand   = "band"
	ScaleLinear = "linear"
)

// TimeEncoding says which field the chart animates through and how.
type TimeEncoding struct {
	Field   string     `json:"field,omitempty"`
	Scale   *TimeScale `json:"scale,omitempty"`
	Key     *Key       `json:"key,omitempty"`
	Rescale *bool      `json:"rescale,omitempty"`
}

// TimeScale maps time field values to elapsed milliseconds.
type TimeScale struct {
	Type   string     `json:"type,omitempty"`
	Range  *TimeRange `json:"range,omitempty"`
	Zero   *bool      `json:"zero,omitempty"`
	Domain []any      `json:"domain,omitempty"`
}

// TimeRange is either a per-value step ({"step": n}) or an explicit
// [start, end] array.
type TimeRange struct {
	Step   *float64
	Values []any
}

// Key identifies the same logical entity across keyframes. A key written as
// false in the document is Disabled.
type Key struct {
	Field    string
	Loop     *bool
	Disabled bool
}

// RescaleEnabled reports whether rescale is set and true.
func (t *TimeEncoding) RescaleEnabled() bool {
	return t != nil && t.Rescale != nil && *t.Rescale
}

// Keyed reports whether entities are matched across keyframes.
func (t *TimeEncoding) Keyed() bool {
	return t != nil && t.Key != nil && !t.Key.Disabled && t.Key.Field != ""
}

// Loop reports whether the key wraps from the last keyframe to the first.
func (t *TimeEncoding) Loop() bool {
	return t.Keyed() && t.Key.Loop != nil && *t.Key.Loop
}

// ScaleType returns the scale type, or "" before elaboration.
func (t *TimeEncoding) ScaleType() string {
	if t == nil || t.Scale == nil {
		return ""
	}
	return t.Scale.Type
}

// Override returns a copy of t with every property set in local replacing
// the inherited one.
func (t *TimeEncoding) Override(local *TimeEncoding) *TimeEncoding {
	out := t.Clone()
	if out == nil {
		out = &TimeEncoding{}
	}
	if local == nil {
		return out
	}
	if local.Field != "" {
		out.Field = local.Field
	}
	if local.Scale != nil {
		out.Scale = local.Scale.Clone()
	}
	if local.Key != nil {
		k := *local.Key
		out.Key = &k
	}
	if local.Rescale != nil {
		out.Rescale = boolPtr(*local.Rescale)
	}
	return out
}

// Clone returns a deep copy.
func (t *TimeEncoding) Clone() *TimeEncoding {
	if t == nil {
		return nil
	}
	out := *t
	out.Scale = t.Scale.Clone()
	if t.Key != nil {
		k := *t.Key
		if t.Key.Loop != nil {
			k.Loop = boolPtr(*t.Key.Loop)
		}
		out.Key = &k
	}
	if t.Rescale != nil {
		out.Rescale = boolPtr(*t.Rescale)
	}
	return &out
}

// Clone returns a deep copy.
func (s *TimeScale) Clone() *TimeScale {
	if s == nil {
		return nil
	}
	out := *s
	if s.Range != nil {
		r := TimeRange{Values: cloneValues(s.Range.Values)}
		if s.Range.Step != nil {
			step := *s.Range.Step
			r.Step = &step
		}
		out.Range = &r
	}
	if s.Zero != nil {
		out.Zero = boolPtr(*s.Zero)
	}
	out.Domain = cloneValues(s.Domain)
	return &out
}

// StepLike reports whether the range is given as a step.
func (r *TimeRange) StepLike() bool { return r != nil && r.Step != nil }

// End returns the last numeric value of an explicit range.
func (r *TimeRange) End() (float64, bool) {
	if r == nil || len(r.Values) == 0 {
		return 0, false
	}
	f, ok := r.Values[len(r.Values)-1].(float64)
	return f, ok
}

func (r TimeRange) MarshalJSON() ([]byte, error) {
	if r.Step != nil {
		return jsonx.Encode(map[string]float64{"step": *r.Step})
	}
	if r.Values == nil {
		return []byte("[]"), nil
	}
	return jsonx.Encode(r.Values)
}

func (r *TimeRange) UnmarshalJSON(data []byte) error {
	*r = TimeRange{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &r.Values)
	}
	var step struct {
		Step *float64 `json:"step"`
	}
	if err := json.Unmarshal(data, &step); err != nil {
		return err
	}
	if step.Step == nil {
		return fmt.Errorf("time range must be an array or {\"step\": n}")
	}
	r.Step = step.Step
	return nil
}

func (k Key) MarshalJSON() ([]byte, error) {
	if k.Disabled {
		return []byte("false"), nil
	}
	type key struct {
		Field string `json:"field"`
		Loop  *bool  `json:"loop,omitempty"`
	}
	return jsonx.Encode(key{Field: k.Field, Loop: k.Loop})
}

func (k *Key) UnmarshalJSON(data []byte) error {
	*k = Key{}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		// key: true has no field to join on; treat it like false
		k.Disabled = true
		return nil
	}
	var key struct {
		Field string `json:"field"`
		Loop  *bool  `json:"loop"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	k.Field, k.Loop = key.Field, key.Loop
	return nil
}

func boolPtr(b bool) *bool { return &b }

func cloneValues(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		return cloneValues(t)
	default:
		return v
	}
}
