package elaborate

import (
	"slices"

	"github.com/matzehuels/vlanimate/pkg/spec"
)

// Params returns params with every animation selection normalized for the
// scope: an object-form timer trigger with a filter list, a default easing,
// and, for slider-bound selections, the scope's is_playing signal among the
// filters so that scrubbing suspends playback.
func Params(params []spec.Param, id spec.ScopeID) []spec.Param {
	for i := range params {
		a := params[i].Animation
		if a == nil {
			continue
		}
		if !a.Select.On.Normalized() {
			a.Select.On = spec.TimerTrigger(a.Select.On.Filter...)
		}
		if a.Select.Easing == nil {
			a.Select.Easing = &spec.Easing{Name: spec.DefaultEasing}
		}
		if a.Slider() && !slices.Contains(a.Select.On.Filter, id.IsPlaying()) {
			a.Select.On.Filter = append(a.Select.On.Filter, id.IsPlaying())
		}
	}
	return params
}
