package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/core"
	"github.com/lixenwraith/vi-drive/parameter"
)

// Sink receives batches of frames on the recorder worker goroutine
// The slice is reused after Write returns
type Sink interface {
	Name() string
	Write(ctx context.Context, frames []Frame) error
	Close() error
}

// Recorder samples frames at a fixed rate and fans them out to sinks
// Offer never blocks; frames that do not fit the queue are dropped and counted
type Recorder struct {
	interval time.Duration
	sinks    []Sink
	log      zerolog.Logger

	queue  chan Frame
	last   time.Time
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex

	offered   atomic.Int64
	dropped   atomic.Int64
	written   atomic.Int64
	sinkFails atomic.Int64
}

// NewRecorder samples at hz frames per second; hz <= 0 uses the default rate
func NewRecorder(hz float64, log zerolog.Logger, sinks ...Sink) *Recorder {
	if hz <= 0 {
		hz = parameter.TelemetrySampleHz
	}
	return &Recorder{
		interval: time.Duration(float64(time.Second) / hz),
		sinks:    sinks,
		log:      log,
		queue:    make(chan Frame, parameter.TelemetryQueueSize),
	}
}

func (r *Recorder) Name() string { return "telemetry" }

// Start launches the sink worker
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return errors.New("telemetry recorder already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	core.Go(func() { r.run(ctx, done) })

	names := make([]string, len(r.sinks))
	for i, s := range r.sinks {
		names[i] = s.Name()
	}
	r.log.Info().Strs("sinks", names).Dur("interval", r.interval).Msg("telemetry recorder started")
	return nil
}

// Stop flushes queued frames, stops the worker and closes every sink
func (r *Recorder) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Sample captures src when at least one interval has passed since the last sample
// Returns whether a frame was captured
func (r *Recorder) Sample(src Source, now time.Time) bool {
	if !r.last.IsZero() && now.Sub(r.last) < r.interval {
		return false
	}
	r.last = now
	r.Offer(Capture(src, now))
	return true
}

// Offer enqueues f without blocking
func (r *Recorder) Offer(f Frame) bool {
	r.offered.Add(1)
	select {
	case r.queue <- f:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

func (r *Recorder) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	batch := make([]Frame, 0, parameter.TelemetryBatchSize)
	ticker := time.NewTicker(parameter.TelemetryFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-r.queue:
			batch = append(batch, f)
			if len(batch) >= parameter.TelemetryBatchSize {
				batch = r.flush(batch)
			}
		case <-ticker.C:
			batch = r.flush(batch)
		case <-ctx.Done():
		drain:
			for {
				select {
				case f := <-r.queue:
					batch = append(batch, f)
				default:
					break drain
				}
			}
			r.flush(batch)
			return
		}
	}
}

func (r *Recorder) flush(batch []Frame) []Frame {
	if len(batch) == 0 {
		return batch
	}
	for _, s := range r.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), parameter.TelemetrySinkTimeout)
		err := s.Write(ctx, batch)
		cancel()
		if err != nil {
			r.sinkFails.Add(1)
			r.log.Error().Err(err).Str("sink", s.Name()).Int("frames", len(batch)).Msg("telemetry write failed")
		}
	}
	r.written.Add(int64(len(batch)))
	return batch[:0]
}

// Stats is a snapshot of recorder counters
type Stats struct {
	Offered   int64
	Dropped   int64
	Written   int64
	SinkFails int64
	Queued    int
}

func (r *Recorder) Stats() Stats {
	return Stats{
		Offered:   r.offered.Load(),
		Dropped:   r.dropped.Load(),
		Written:   r.written.Load(),
		SinkFails: r.sinkFails.Load(),
		Queued:    len(r.queue),
	}
}
