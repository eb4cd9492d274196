package timeline

import "github.com/matzehuels/vlanimate/pkg/spec"

// Player advances a timeline's clock in wall-clock steps.
//
// The clock runs while the current keyframe's pause, if any, has elapsed
// since the keyframe became current, and wraps to 0 once it passes the
// timeline's duration. Player is not safe for concurrent use.
type Player struct {
	tl *Timeline

	clock float64
	now   float64

	// since is when the current keyframe became current.
	since float64
	frame Frame
}

// NewPlayer returns a player at clock 0.
func NewPlayer(tl *Timeline) *Player {
	return &Player{tl: tl, frame: tl.At(0)}
}

// Frame returns the current frame.
func (p *Player) Frame() Frame { return p.frame }

// Elapsed returns the wall-clock milliseconds played so far.
func (p *Player) Elapsed() float64 { return p.now }

// Playing reports whether the clock advances on the next tick.
func (p *Player) Playing() bool {
	d := p.tl.PauseFor(p.frame.Current)
	return d == 0 || p.now-p.since > d
}

// Tick advances wall-clock time by dt milliseconds and returns the new frame.
func (p *Player) Tick(dt float64) Frame {
	p.now += dt
	if p.Playing() {
		next := p.clock + dt
		if next > p.tl.Duration {
			next = 0
		}
		p.clock = next
	}
	p.update()
	return p.frame
}

// Seek moves the clock to the position of a keyframe value, the way a bound
// slider does. Unknown values leave the clock unchanged.
func (p *Player) Seek(value any) Frame {
	for i, k := range p.tl.Keyframes {
		if equal(k, value) {
			p.clock = p.tl.Offset(i)
			break
		}
	}
	p.update()
	return p.frame
}

func (p *Player) update() {
	prev := p.frame.Index
	p.frame = p.tl.At(p.clock)
	if p.frame.Index != prev {
		p.since = p.now
	}
}

// Offset returns the clock value at which keyframe i starts.
func (tl *Timeline) Offset(i int) float64 {
	if tl.Type == spec.ScaleLinear {
		v, _ := number(tl.Keyframes[i])
		return tl.scale(v)
	}
	return tl.start + float64(i)*tl.bandwidth
}
