package compile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// throttleMs limits timer events to one per frame at 60 fps.
const throttleMs = 1000.0 / 60

func timer() vega.Object { return vega.Object{"type": "timer", "throttle": throttleMs} }

func sliderSignal(a *spec.AnimationSelection) string { return a.Name + "_slider" }

// clock emits the scope's animation clock: anim_clock advances by the time
// since the last tick while every trigger filter and the pause hold allow
// it, and wraps to 0 past the end of the time range.
func clock(st *scopeState) *vega.Spec {
	driver := st.Driver()
	var filters []string
	if driver != nil {
		filters = driver.Select.On.Filter
	}

	cond := strings.Join(append(slices.Clone(filters), st.pausePlaying()), " && ")
	advanced := fmt.Sprintf("%s + (now() - %s)", st.clock(), st.lastTick())
	animClock := vega.Signal{
		Name: st.clock(),
		Init: "0",
		On: []vega.Handler{{
			Events: timer(),
			Update: fmt.Sprintf("%s ? (%s > %s ? 0 : %s) : %s", cond, advanced, st.maxRange(), advanced, st.clock()),
		}},
	}
	if driver != nil && driver.Slider() {
		animClock.On = append(animClock.On, vega.Handler{
			Events: vega.Object{"signal": sliderSignal(driver)},
			Update: scaleCall(st.timeScale(), sliderSignal(driver)),
		})
	}

	// Resuming after a gate closes must not jump the clock ahead.
	tickOn := []string{st.clock()}
	for _, f := range filters {
		if identifier.MatchString(f) {
			tickOn = append(tickOn, f)
		}
	}
	tickOn = append(tickOn, st.pausePlaying())

	return &vega.Spec{Signals: []vega.Signal{
		animClock,
		{
			Name: st.lastTick(),
			Init: "now()",
			On:   []vega.Handler{{Events: vega.Events(tickOn...), Update: "now()"}},
		},
		{
			Name:   st.eased(),
			Update: easing(driver, fmt.Sprintf("%s / %s", st.clock(), st.maxRange())) + " * " + st.maxRange(),
		},
	}}
}

// easing applies the selection's easing to progress, a value in [0, 1].
func easing(a *spec.AnimationSelection, progress string) string {
	if a == nil || a.Select.Easing == nil {
		return call(spec.DefaultEasing, progress)
	}
	if e := a.Select.Easing; e.Name == "" && len(e.Points) > 0 {
		return call("interpolateCatmullRom", literal(e.Points), progress)
	}
	if name := a.EasingName(); name != "" {
		return call(name, progress)
	}
	return call(spec.DefaultEasing, progress)
}
