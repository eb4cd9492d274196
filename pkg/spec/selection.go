package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

// DefaultEasing is the easing applied when a selection names none.
const DefaultEasing = "easeLinear"

// Param is one entry of a view's params list. Animation selections are
// parsed; every other param is kept verbatim in Raw.
type Param struct {
	Animation *AnimationSelection
	Raw       json.RawMessage
}

// Name returns the param's name.
func (p *Param) Name() string {
	if p.Animation != nil {
		return p.Animation.Name
	}
	var named struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(p.Raw, &named)
	return named.Name
}

func (p Param) MarshalJSON() ([]byte, error) {
	if p.Animation != nil {
		return jsonx.Encode(p.Animation)
	}
	if len(p.Raw) == 0 {
		return []byte("null"), nil
	}
	return p.Raw, nil
}

func (p *Param) UnmarshalJSON(data []byte) error {
	*p = Param{}
	if isAnimationSelection(data) {
		p.Animation = &AnimationSelection{}
		return json.Unmarshal(data, p.Animation)
	}
	p.Raw = bytes.Clone(data)
	return nil
}

// isAnimationSelection reports whether a param is a point selection
// triggered by the timer.
func isAnimationSelection(data []byte) bool {
	var probe struct {
		Select json.RawMessage `json:"select"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || len(probe.Select) == 0 {
		return false
	}
	var sel struct {
		Type string          `json:"type"`
		On   json.RawMessage `json:"on"`
	}
	if err := json.Unmarshal(probe.Select, &sel); err != nil || sel.Type != "point" {
		return false
	}
	var on string
	if err := json.Unmarshal(sel.On, &on); err == nil {
		return on == "timer"
	}
	var stream struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(sel.On, &stream); err == nil {
		return stream.Type == "timer"
	}
	return false
}

// AnimationSelection is a point selection driven by the animation clock.
type AnimationSelection struct {
	Name   string          `json:"name"`
	Select AnimationSelect `json:"select"`
	Bind   *Bind           `json:"bind,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// AnimationSelect configures an animation selection.
type AnimationSelect struct {
	Type      string     `json:"type"`
	On        Trigger    `json:"on"`
	Predicate *Predicate `json:"predicate,omitempty"`
	Easing    *Easing    `json:"easing,omitempty"`
	Pause     []Pause    `json:"pause,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	selectionKeys = []string{"name", "select", "bind"}
	selectKeys    = []string{"type", "on", "predicate", "easing", "pause"}
)

func (a AnimationSelection) MarshalJSON() ([]byte, error) {
	type alias AnimationSelection
	return jsonx.MarshalWith(alias(a), a.Extra)
}

func (a *AnimationSelection) UnmarshalJSON(data []byte) error {
	type alias AnimationSelection
	var v alias
	extra, err := jsonx.UnmarshalWith(data, &v, selectionKeys)
	if err != nil {
		return err
	}
	*a = AnimationSelection(v)
	a.Extra = extra
	return nil
}

func (s AnimationSelect) MarshalJSON() ([]byte, error) {
	type alias AnimationSelect
	return jsonx.MarshalWith(alias(s), s.Extra)
}

func (s *AnimationSelect) UnmarshalJSON(data []byte) error {
	type alias AnimationSelect
	var v alias
	extra, err := jsonx.UnmarshalWith(data, &v, selectKeys)
	if err != nil {
		return err
	}
	*s = AnimationSelect(v)
	s.Extra = extra
	return nil
}

// EasingName returns the named easing function, or "" for a control-point
// easing.
func (a *AnimationSelection) EasingName() string {
	if a.Select.Easing == nil {
		return ""
	}
	return a.Select.Easing.Name
}

// Slider reports whether the selection is bound to a range input.
func (a *AnimationSelection) Slider() bool {
	return a.Bind != nil && !a.Bind.Scales && a.Bind.Input != nil
}

// ScalesBound reports whether the selection is bound to scales.
func (a *AnimationSelection) ScalesBound() bool {
	return a.Bind != nil && a.Bind.Scales
}

// Trigger is the "on" of an animation selection: the timer, optionally
// gated by filter expressions that must all hold for the clock to advance.
type Trigger struct {
	Filter []string

	form triggerForm
}

type triggerForm int

const (
	triggerList triggerForm = iota
	triggerShorthand
	triggerObject
	triggerSingleFilter
)

// TimerTrigger returns the normalized trigger with the given filters.
func TimerTrigger(filter ...string) Trigger {
	if filter == nil {
		filter = []string{}
	}
	return Trigger{Filter: filter}
}

// Normalized reports whether the trigger is in object form with a filter list.
func (t Trigger) Normalized() bool { return t.form == triggerList && t.Filter != nil }

func (t Trigger) MarshalJSON() ([]byte, error) {
	switch {
	case t.form == triggerShorthand && len(t.Filter) == 0:
		return []byte(`"timer"`), nil
	case t.form == triggerObject && len(t.Filter) == 0:
		return []byte(`{"type":"timer"}`), nil
	case t.form == triggerSingleFilter && len(t.Filter) == 1:
		return jsonx.Encode(map[string]any{"type": "timer", "filter": t.Filter[0]})
	}
	filter := t.Filter
	if filter == nil {
		filter = []string{}
	}
	return jsonx.Encode(map[string]any{"type": "timer", "filter": filter})
}

func (t *Trigger) UnmarshalJSON(data []byte) error {
	*t = Trigger{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "timer" {
			return fmt.Errorf("animation selection must be triggered by the timer, got %q", s)
		}
		t.form = triggerShorthand
		return nil
	}
	var obj struct {
		Type   string          `json:"type"`
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Type != "timer" {
		return fmt.Errorf("animation selection must be triggered by the timer, got %q", obj.Type)
	}
	if len(obj.Filter) == 0 {
		t.form = triggerObject
		return nil
	}
	if err := json.Unmarshal(obj.Filter, &s); err == nil {
		t.Filter = []string{s}
		t.form = triggerSingleFilter
		return nil
	}
	return json.Unmarshal(obj.Filter, &t.Filter)
}

// Predicate restricts which rows belong to the current keyframe: a single
// field predicate or a conjunction of them.
type Predicate struct {
	And []FieldPredicate
	and bool
}

// Fields returns the predicate's field predicates.
func (p *Predicate) Fields() []FieldPredicate {
	if p == nil {
		return nil
	}
	return p.And
}

// Conjunction reports whether the predicate was written as {"and": [...]}.
func (p *Predicate) Conjunction() bool { return p != nil && p.and }

// NewPredicate returns a predicate over the given field predicates.
func NewPredicate(preds ...FieldPredicate) *Predicate {
	return &Predicate{And: preds, and: len(preds) != 1}
}

func (p Predicate) MarshalJSON() ([]byte, error) {
	if !p.and && len(p.And) == 1 {
		return jsonx.Encode(p.And[0])
	}
	return jsonx.Encode(map[string]any{"and": p.And})
}

func (p *Predicate) UnmarshalJSON(data []byte) error {
	*p = Predicate{}
	var and struct {
		And []FieldPredicate `json:"and"`
	}
	if err := json.Unmarshal(data, &and); err == nil && and.And != nil {
		p.And, p.and = and.And, true
		return nil
	}
	var single FieldPredicate
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	p.And = []FieldPredicate{single}
	return nil
}

// FieldPredicate is a comparison on one field. Exactly one operator is
// expected to be set.
type FieldPredicate struct {
	Field string `json:"field"`
	Equal any    `json:"equal,omitempty"`
	Lt    any    `json:"lt,omitempty"`
	Gt    any    `json:"gt,omitempty"`
	Lte   any    `json:"lte,omitempty"`
	Gte   any    `json:"gte,omitempty"`
	Range []any  `json:"range,omitempty"`
	OneOf []any  `json:"oneOf,omitempty"`
	Valid *bool  `json:"valid,omitempty"`
}

// Selection tuple types, as understood by the runtime's selection tests.
const (
	TupleEqual        = "E"
	TupleLess         = "E-LT"
	TupleGreater      = "E-GT"
	TupleLessEqual    = "E-LTE"
	TupleGreaterEqual = "E-GTE"
	TupleRange        = "R"
	TupleValid        = "E-VALID"
)

// TupleType returns the selection tuple type for the predicate's operator.
func (p FieldPredicate) TupleType() string {
	switch {
	case p.Equal != nil:
		return TupleEqual
	case p.Lt != nil:
		return TupleLess
	case p.Gt != nil:
		return TupleGreater
	case p.Lte != nil:
		return TupleLessEqual
	case p.Gte != nil:
		return TupleGreaterEqual
	case p.Range != nil:
		return TupleRange
	case p.OneOf != nil:
		return TupleEqual
	case p.Valid != nil:
		return TupleValid
	}
	return TupleEqual
}

// Easing is a named easing function ("easeCubicInOut") or an ascending list
// of control points in [0, 1] for a Catmull-Rom easing curve.
type Easing struct {
	Name   string
	Points []float64
}

func (e Easing) MarshalJSON() ([]byte, error) {
	if e.Points != nil {
		return jsonx.Encode(e.Points)
	}
	return jsonx.Encode(e.Name)
}

func (e *Easing) UnmarshalJSON(data []byte) error {
	*e = Easing{}
	if err := json.Unmarshal(data, &e.Name); err == nil {
		return nil
	}
	return json.Unmarshal(data, &e.Points)
}

// Pause holds the animation on a keyframe value for Duration milliseconds.
type Pause struct {
	Value    any     `json:"value"`
	Duration float64 `json:"duration"`
}

// Bind is "scales" or a range input definition.
type Bind struct {
	Scales bool
	Input  map[string]any
}

func (b Bind) MarshalJSON() ([]byte, error) {
	if b.Scales {
		return []byte(`"scales"`), nil
	}
	return jsonx.Encode(b.Input)
}

func (b *Bind) UnmarshalJSON(data []byte) error {
	*b = Bind{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "scales" {
			return fmt.Errorf("unsupported selection bind %q", s)
		}
		b.Scales = true
		return nil
	}
	return json.Unmarshal(data, &b.Input)
}
