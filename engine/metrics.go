package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName scopes the frame loop instruments
const InstrumentationName = "github.com/lixenwraith/vi-drive/engine"

func meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// frameMetrics records loop throughput
// Loops built without WithMeter use the global provider, a no-op until one is installed
type frameMetrics struct {
	frames  metric.Int64Counter
	skipped metric.Int64Counter
	dt      metric.Float64Histogram
}

func newFrameMetrics(m metric.Meter) (*frameMetrics, error) {
	fm := &frameMetrics{}
	var err error

	fm.frames, err = m.Int64Counter(
		"engine.frames",
		metric.WithDescription("Frames admitted by the frame gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame counter: %w", err)
	}

	fm.skipped, err = m.Int64Counter(
		"engine.frames.skipped",
		metric.WithDescription("Loop passes rejected by the frame gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	fm.dt, err = m.Float64Histogram(
		"engine.frame.dt",
		metric.WithDescription("Unclamped frame delta"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame dt histogram: %w", err)
	}

	return fm, nil
}

func (fm *frameMetrics) admitted(dt float64) {
	ctx := context.Background()
	fm.frames.Add(ctx, 1)
	fm.dt.Record(ctx, dt)
}

func (fm *frameMetrics) rejected() {
	fm.skipped.Add(context.Background(), 1)
}
