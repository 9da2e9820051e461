package asset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/core"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/scene"
)

// Result is a completed load
// Body or a wheel entry is nil when that model was not requested or failed
type Result struct {
	Generation uint64
	ProfileID  string
	Body       *scene.Transform
	Wheels     [parameter.WheelCount]*scene.Transform
	Err        error
}

// Pipeline runs loads in the background and hands results back to the frame loop
type Pipeline struct {
	loader  Loader
	log     zerolog.Logger
	timeout time.Duration

	results chan Result
	done    chan struct{}
	gen     atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	stale  atomic.Int64
	failed atomic.Int64
}

func NewPipeline(loader Loader, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		loader:  loader,
		log:     log,
		timeout: parameter.AssetLoadTimeout,
		results: make(chan Result, parameter.AssetResultBuffer),
		done:    make(chan struct{}),
	}
}

// SetTimeout bounds each subsequent load
func (p *Pipeline) SetTimeout(d time.Duration) {
	p.timeout = d
}

// Generation returns the current load generation
func (p *Pipeline) Generation() uint64 {
	return p.gen.Load()
}

// Begin starts loading the body and wheel models of prof and returns the new generation
// Any in-flight load is cancelled and its result, if any, will be stale
func (p *Pipeline) Begin(prof catalog.Profile) uint64 {
	gen := p.gen.Add(1)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.closed {
		p.cancel = nil
		p.mu.Unlock()
		return gen
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	body, wheel := prof.Visual.Body, prof.Visual.Wheel
	id := prof.ID
	core.Go(func() {
		defer p.wg.Done()
		defer cancel()
		r := p.load(ctx, gen, id, body, wheel)
		select {
		case p.results <- r:
		case <-p.done:
		}
	})

	p.log.Debug().Str("profile", id).Uint64("generation", gen).Msg("asset load started")
	return gen
}

func (p *Pipeline) load(ctx context.Context, gen uint64, id string, body, wheel catalog.Model) Result {
	r := Result{Generation: gen, ProfileID: id}
	g, gctx := errgroup.WithContext(ctx)

	if body.Path != "" {
		g.Go(func() error {
			n, err := p.loader.Load(gctx, body)
			if err != nil {
				return fmt.Errorf("body: %w", err)
			}
			r.Body = n
			return nil
		})
	}

	var wheelNode *scene.Transform
	if wheel.Path != "" {
		g.Go(func() error {
			n, err := p.loader.Load(gctx, wheel)
			if err != nil {
				return fmt.Errorf("wheel: %w", err)
			}
			wheelNode = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.Err = fmt.Errorf("%w: %s: %w", ErrAssetLoad, id, err)
		r.Body = nil
		return r
	}

	if wheelNode != nil {
		for i := range r.Wheels {
			w := wheelNode.Clone()
			w.Name = fmt.Sprintf("%s/wheel%d", id, i)
			r.Wheels[i] = w
		}
	}
	return r
}

// Drain hands every buffered current-generation result to apply without blocking
// Stale results are dropped; failures are logged and not applied
// Returns the number of results applied
func (p *Pipeline) Drain(apply func(Result)) int {
	applied := 0
	for {
		select {
		case r := <-p.results:
			cur := p.gen.Load()
			switch {
			case r.Generation != cur:
				p.stale.Add(1)
				p.log.Debug().Str("profile", r.ProfileID).Uint64("generation", r.Generation).
					Uint64("current", cur).Msg("stale asset result dropped")
			case r.Err != nil:
				p.failed.Add(1)
				p.log.Warn().Err(r.Err).Str("profile", r.ProfileID).Msg("keeping placeholder geometry")
			default:
				apply(r)
				applied++
			}
		default:
			return applied
		}
	}
}

// Stale returns the number of results dropped for being superseded
func (p *Pipeline) Stale() int64 { return p.stale.Load() }

// Failed returns the number of current-generation loads that failed
func (p *Pipeline) Failed() int64 { return p.failed.Load() }

// Close cancels the in-flight load and waits for workers to exit
func (p *Pipeline) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}
