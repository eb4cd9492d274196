package timeline

import (
	"math"

	"github.com/tanema/gween/ease"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
)

// Easer maps progress in [0, 1] to eased progress.
type Easer func(t float64) float64

// easings maps the runtime's easing names to tween functions. Unsuffixed
// names follow the runtime's defaults.
var easings = map[string]ease.TweenFunc{
	"easeLinear":       ease.Linear,
	"easeQuad":         ease.InOutQuad,
	"easeQuadIn":       ease.InQuad,
	"easeQuadOut":      ease.OutQuad,
	"easeQuadInOut":    ease.InOutQuad,
	"easeCubic":        ease.InOutCubic,
	"easeCubicIn":      ease.InCubic,
	"easeCubicOut":     ease.OutCubic,
	"easeCubicInOut":   ease.InOutCubic,
	"easePoly":         ease.InOutCubic,
	"easePolyIn":       ease.InCubic,
	"easePolyOut":      ease.OutCubic,
	"easePolyInOut":    ease.InOutCubic,
	"easeSin":          ease.InOutSine,
	"easeSinIn":        ease.InSine,
	"easeSinOut":       ease.OutSine,
	"easeSinInOut":     ease.InOutSine,
	"easeExp":          ease.InOutExpo,
	"easeExpIn":        ease.InExpo,
	"easeExpOut":       ease.OutExpo,
	"easeExpInOut":     ease.InOutExpo,
	"easeCircle":       ease.InOutCirc,
	"easeCircleIn":     ease.InCirc,
	"easeCircleOut":    ease.OutCirc,
	"easeCircleInOut":  ease.InOutCirc,
	"easeElastic":      ease.OutElastic,
	"easeElasticIn":    ease.InElastic,
	"easeElasticOut":   ease.OutElastic,
	"easeElasticInOut": ease.InOutElastic,
	"easeBack":         ease.InOutBack,
	"easeBackIn":       ease.InBack,
	"easeBackOut":      ease.OutBack,
	"easeBackInOut":    ease.InOutBack,
	"easeBounce":       ease.OutBounce,
	"easeBounceIn":     ease.InBounce,
	"easeBounceOut":    ease.OutBounce,
	"easeBounceInOut":  ease.InOutBounce,
}

// Named returns the easing with the given runtime name.
func Named(name string) (Easer, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown easing %q", name)
	}
	return func(t float64) float64 {
		return float64(fn(float32(clamp(t, 0, 1)), 0, 1, 1))
	}, nil
}

// EasingOf returns the easing of an animation selection: its control-point
// curve, its named easing, or linear.
func EasingOf(a *spec.AnimationSelection) (Easer, error) {
	if a == nil || a.Select.Easing == nil {
		return Named(spec.DefaultEasing)
	}
	if e := a.Select.Easing; e.Name == "" && len(e.Points) > 0 {
		points := e.Points
		return func(t float64) float64 { return CatmullRom(points, t) }, nil
	}
	if name := a.EasingName(); name != "" {
		return Named(name)
	}
	return Named(spec.DefaultEasing)
}

// CatmullRom evaluates a uniform Catmull-Rom spline through values at t in
// [0, 1]. The end points are repeated to close the first and last segments.
func CatmullRom(values []float64, t float64) float64 {
	switch len(values) {
	case 0:
		return math.NaN()
	case 1:
		return values[0]
	}
	t = clamp(t, 0, 1)
	n := len(values) - 1
	pos := t * float64(n)
	i := int(math.Floor(pos))
	if i >= n {
		i = n - 1
	}
	u := pos - float64(i)

	at := func(j int) float64 { return values[max(0, min(n, j))] }
	p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
	return 0.5 * (2*p1 +
		(-p0+p2)*u +
		(2*p0-5*p1+4*p2-p3)*u*u +
		(-p0+3*p1-3*p2+p3)*u*u*u)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
