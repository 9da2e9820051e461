package engine

import (
	"time"

	"github.com/lixenwraith/vi-drive/parameter"
)

// FrameGate admits at most one frame per period
// A rejected pass does no work at all
type FrameGate struct {
	period time.Duration
	last   time.Time
	primed bool
}

// NewFrameGate creates a gate for fps frames per second
func NewFrameGate(fps int) *FrameGate {
	if fps < parameter.MinTargetFPS {
		fps = parameter.MinTargetFPS
	}
	return &FrameGate{period: time.Second / time.Duration(fps)}
}

// Period returns the minimum spacing between admitted frames
func (g *FrameGate) Period() time.Duration {
	return g.period
}

// Tick reports whether a frame runs at now and the seconds since the last admitted frame
// The first tick primes the gate and is admitted with dt 0
func (g *FrameGate) Tick(now time.Time) (dt float64, ok bool) {
	if !g.primed {
		g.primed = true
		g.last = now
		return 0, true
	}
	elapsed := now.Sub(g.last)
	if elapsed < g.period {
		return 0, false
	}
	g.last = now
	return elapsed.Seconds(), true
}

// Reset forgets the last admitted frame; the next tick primes again
func (g *FrameGate) Reset() {
	g.primed = false
	g.last = time.Time{}
}
