package compile

import (
	"fmt"

	"github.com/matzehuels/vlanimate/pkg/vega"
)

// pause emits the keyframe holds of the driving selection. The clock only
// advances while is_playing_datum_pause holds, which is always the case
// without holds.
func pause(st *scopeState) *vega.Spec {
	driver := st.Driver()
	if driver == nil || len(driver.Select.Pause) == 0 {
		return &vega.Spec{Signals: []vega.Signal{{Name: st.pausePlaying(), Value: true}}}
	}

	values := make([]any, len(driver.Select.Pause))
	for i, p := range driver.Select.Pause {
		values[i] = vega.Object{"value": vega.CloneValue(p.Value), "duration": p.Duration}
	}
	holds := st.name("time_pause")
	duration := st.name("datum_pause_duration")
	since := st.name("last_datum_pause_at")

	return &vega.Spec{
		Data: []vega.Data{{
			Name:      holds,
			Values:    values,
			Transform: []vega.Object{{"type": "filter", "expr": "datum.value == " + st.current()}},
		}},
		Signals: []vega.Signal{
			{
				Name:   duration,
				Update: fmt.Sprintf("length(data(%s)) ? data(%s)[0].duration : null", str(holds), str(holds)),
			},
			{
				Name: since,
				Init: "now()",
				On:   []vega.Handler{{Events: vega.Events(duration, st.current()), Update: "now()"}},
			},
			{
				Name:  st.pausePlaying(),
				Value: true,
				On: []vega.Handler{{
					Events: timer(),
					Update: fmt.Sprintf("%s ? (now() - %s > %s) : true", duration, since, duration),
				}},
			},
		},
	}
}
