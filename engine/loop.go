package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/metric"

	"github.com/lixenwraith/vi-drive/parameter"
)

// Updatable runs once per admitted frame before the physics step
type Updatable interface {
	Update(dt float64)
}

// Syncer runs once per admitted frame after the physics step
type Syncer interface {
	AfterStep()
}

// Positioned exposes a world position, used by followers such as the camera
type Positioned interface {
	Position() mgl64.Vec3
}

// Stepper advances the physics substrate
type Stepper interface {
	Step(dt float64)
}

// Loop drives one frame: updatables in order, one physics step, then syncers
type Loop struct {
	clock TimeProvider
	gate  *FrameGate
	world Stepper

	updatables []Updatable
	syncers    []Syncer

	metrics *frameMetrics
	frames  atomic.Uint64
	skipped atomic.Uint64
	lastDT  atomic.Uint64 // float64 bits
}

// LoopOption configures a Loop
type LoopOption func(*loopOptions)

type loopOptions struct {
	meter metric.Meter
}

// WithMeter records frame metrics on m instead of the global meter provider
func WithMeter(m metric.Meter) LoopOption {
	return func(o *loopOptions) { o.meter = m }
}

// NewLoop creates a loop gated at fps; world may be nil for loops without physics
func NewLoop(clock TimeProvider, fps int, world Stepper, opts ...LoopOption) (*Loop, error) {
	o := loopOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.meter == nil {
		o.meter = meter()
	}
	fm, err := newFrameMetrics(o.meter)
	if err != nil {
		return nil, err
	}
	return &Loop{
		clock:   clock,
		gate:    NewFrameGate(fps),
		world:   world,
		metrics: fm,
	}, nil
}

// Add appends u to the update order; a u that also implements Syncer is registered as one
func (l *Loop) Add(u Updatable) {
	l.updatables = append(l.updatables, u)
	if s, ok := u.(Syncer); ok {
		l.syncers = append(l.syncers, s)
	}
}

// AddSyncer appends a post-step hook
func (l *Loop) AddSyncer(s Syncer) {
	l.syncers = append(l.syncers, s)
}

// Tick runs one frame if the gate admits it
// Returns the unclamped dt and whether the frame ran
func (l *Loop) Tick() (float64, bool) {
	dt, ok := l.gate.Tick(l.clock.Now())
	if !ok {
		l.skipped.Add(1)
		l.metrics.rejected()
		return 0, false
	}
	l.Step(dt)
	return dt, true
}

// Step runs one frame with dt, bypassing the gate
func (l *Loop) Step(dt float64) {
	l.frames.Add(1)
	l.lastDT.Store(math.Float64bits(dt))
	l.metrics.admitted(dt)

	for _, u := range l.updatables {
		u.Update(dt)
	}
	if l.world != nil {
		l.world.Step(math.Min(dt, parameter.MaxFrameStep))
	}
	for _, s := range l.syncers {
		s.AfterStep()
	}
}

// Run ticks until ctx is done or onFrame returns false
// onFrame is called after every admitted frame with its dt
func (l *Loop) Run(ctx context.Context, onFrame func(dt float64) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dt, ok := l.Tick()
		if !ok {
			time.Sleep(parameter.IdleSleep)
			continue
		}
		if onFrame != nil && !onFrame(dt) {
			return nil
		}
	}
}

// Frames returns the number of admitted frames
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Skipped returns the number of rejected passes
func (l *Loop) Skipped() uint64 { return l.skipped.Load() }

// LastDT returns the dt of the most recent frame
func (l *Loop) LastDT() float64 { return math.Float64frombits(l.lastDT.Load()) }

// FPS estimates the frame rate from the last dt
func (l *Loop) FPS() float64 {
	dt := l.LastDT()
	if dt <= 0 {
		return 0
	}
	return 1 / dt
}
