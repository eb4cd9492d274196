package timeline

import (
	"slices"

	"github.com/aclements/go-moremath/stats"
)

// Summary describes how long each keyframe stays on screen during one pass
// of the clock, pauses included, in milliseconds.
type Summary struct {
	Keyframes int
	Duration  float64
	Mean      float64
	StdDev    float64
	Min       float64
	Median    float64
	Max       float64
}

// Holds returns the on-screen time of each keyframe.
func (tl *Timeline) Holds() []float64 {
	out := make([]float64, len(tl.Keyframes))
	for i, k := range tl.Keyframes {
		end := tl.Duration
		if i+1 < len(tl.Keyframes) {
			end = tl.Offset(i + 1)
		}
		out[i] = max(0, end-tl.Offset(i)) + tl.PauseFor(k)
	}
	return out
}

// Summarize returns hold-time statistics of a timeline.
func Summarize(tl *Timeline) Summary {
	holds := tl.Holds()
	s := Summary{Keyframes: len(holds)}
	if len(holds) == 0 {
		return s
	}
	for _, h := range holds {
		s.Duration += h
	}
	s.Mean = stats.Mean(holds)
	if len(holds) > 1 {
		s.StdDev = stats.StdDev(holds)
	}
	s.Min, s.Max = stats.Bounds(holds)

	sorted := slices.Clone(holds)
	slices.Sort(sorted)
	s.Median = stats.Sample{Xs: sorted, Sorted: true}.Quantile(0.5)
	return s
}
