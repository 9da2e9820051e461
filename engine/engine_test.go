package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics"
)

var start = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMockTimeProvider(t *testing.T) {
	m := NewMockTimeProvider(start)
	if !m.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", m.Now(), start)
	}

	m.Advance(time.Second)
	m.AdvanceSeconds(0.5)
	if got := m.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("advanced %v, want 1.5s", got)
	}

	later := start.Add(time.Hour)
	m.SetTime(later)
	if !m.Now().Equal(later) {
		t.Errorf("SetTime not applied")
	}
}

func TestMockTimeProviderConcurrent(t *testing.T) {
	m := NewMockTimeProvider(start)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Advance(time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			_ = m.Now()
		}()
	}
	wg.Wait()
	if got := m.Now().Sub(start); got != 50*time.Millisecond {
		t.Errorf("advanced %v, want 50ms", got)
	}
}

func TestMonotonicTimeProvider(t *testing.T) {
	p := NewMonotonicTimeProvider()
	a := p.Now()
	b := p.Now()
	if b.Before(a) {
		t.Error("time went backwards")
	}
}

var (
	_ TimeProvider = (*MonotonicTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
	_ Stepper      = (physics.World)(nil)
)

func TestFrameGate(t *testing.T) {
	g := NewFrameGate(100) // 10ms period

	tests := []struct {
		name   string
		at     time.Duration
		wantOK bool
		wantDT float64
	}{
		{"first tick primes", 0, true, 0},
		{"too early", 5 * time.Millisecond, false, 0},
		{"one period", 10 * time.Millisecond, true, 0.010},
		{"rejected pass does not move origin", 15 * time.Millisecond, false, 0},
		{"long frame", 50 * time.Millisecond, true, 0.040},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, ok := g.Tick(start.Add(tt.at))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(dt-tt.wantDT) > 1e-9 {
				t.Errorf("dt = %v, want %v", dt, tt.wantDT)
			}
		})
	}
}

func TestFrameGateClampsRate(t *testing.T) {
	if got := NewFrameGate(0).Period(); got != time.Second {
		t.Errorf("period = %v, want 1s", got)
	}
	if got := NewFrameGate(parameter.DefaultTargetFPS).Period(); got != time.Second/240 {
		t.Errorf("period = %v", got)
	}
}

type orderRecorder struct {
	log *[]string
	dt  float64
}

func (p *orderRecorder) Update(dt float64) {
	p.dt = dt
	*p.log = append(*p.log, "update")
}

func (p *orderRecorder) AfterStep() { *p.log = append(*p.log, "sync") }

type stepRecorder struct {
	log *[]string
	dts []float64
}

func (s *stepRecorder) Step(dt float64) {
	s.dts = append(s.dts, dt)
	*s.log = append(*s.log, "step")
}

func TestLoopOrderAndClamp(t *testing.T) {
	var log []string
	world := &stepRecorder{log: &log}
	clock := NewMockTimeProvider(start)

	l, err := NewLoop(clock, 60, world)
	if err != nil {
		t.Fatal(err)
	}
	rec := &orderRecorder{log: &log}
	l.Add(rec)

	if _, ok := l.Tick(); !ok {
		t.Fatal("first tick rejected")
	}

	clock.Advance(time.Millisecond)
	if _, ok := l.Tick(); ok {
		t.Fatal("early tick admitted")
	}

	clock.Advance(500 * time.Millisecond)
	dt, ok := l.Tick()
	if !ok {
		t.Fatal("late tick rejected")
	}

	want := []string{"update", "step", "sync", "update", "step", "sync"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}

	// Controllers see the real dt; the substrate sees at most 1/30 s
	if math.Abs(rec.dt-dt) > 1e-12 || math.Abs(dt-0.501) > 1e-9 {
		t.Errorf("update dt = %v, tick dt = %v", rec.dt, dt)
	}
	if got := world.dts[1]; got != parameter.MaxFrameStep {
		t.Errorf("step dt = %v, want %v", got, parameter.MaxFrameStep)
	}

	if l.Frames() != 2 || l.Skipped() != 1 {
		t.Errorf("frames = %d skipped = %d", l.Frames(), l.Skipped())
	}
}

func TestLoopWithRecordingWorld(t *testing.T) {
	w := &physics.RecordingWorld{}
	l, err := NewLoop(NewMockTimeProvider(start), 60, w)
	if err != nil {
		t.Fatal(err)
	}
	l.Step(1.0 / 240)
	if len(w.Steps) != 1 || w.Steps[0] != 1.0/240 {
		t.Errorf("steps = %v", w.Steps)
	}
	if math.Abs(l.FPS()-240) > 1e-9 {
		t.Errorf("fps = %v", l.FPS())
	}
}

func TestLoopRunStops(t *testing.T) {
	l, err := NewLoop(NewMonotonicTimeProvider(), 1000, nil)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	err = l.Run(context.Background(), func(float64) bool {
		n++
		return n < 3
	})
	if err != nil || n != 3 {
		t.Errorf("Run = %v after %d frames", err, n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run on cancelled ctx = %v", err)
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		t.Fatalf("metric %s not recorded", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("metric %s data = %T %+v", name, m.Data, m.Data)
	}
	return sum.DataPoints[0].Value
}

func TestLoopRecordsFrameMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	clock := NewMockTimeProvider(start)
	l, err := NewLoop(clock, 100, nil, WithMeter(mp.Meter("test")))
	if err != nil {
		t.Fatal(err)
	}

	l.Tick() // primes, admitted with dt 0
	clock.Advance(time.Millisecond)
	l.Tick() // rejected
	clock.Advance(20 * time.Millisecond)
	l.Tick()
	clock.Advance(10 * time.Millisecond)
	l.Tick()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}

	if got := sumValue(t, rm, "engine.frames"); got != 3 {
		t.Errorf("engine.frames = %d, want 3", got)
	}
	if got := sumValue(t, rm, "engine.frames.skipped"); got != 1 {
		t.Errorf("engine.frames.skipped = %d, want 1", got)
	}

	m, ok := findMetric(rm, "engine.frame.dt")
	if !ok {
		t.Fatal("engine.frame.dt not recorded")
	}
	h, ok := m.Data.(metricdata.Histogram[float64])
	if !ok || len(h.DataPoints) != 1 {
		t.Fatalf("engine.frame.dt data = %T", m.Data)
	}
	if dp := h.DataPoints[0]; dp.Count != 3 || math.Abs(dp.Sum-0.031) > 1e-9 {
		t.Errorf("dt histogram count = %d sum = %v", dp.Count, dp.Sum)
	}
	if l.Frames() != 3 || l.Skipped() != 1 {
		t.Errorf("frames = %d skipped = %d", l.Frames(), l.Skipped())
	}
}

type fakeService struct {
	name    string
	failOn  bool
	log     *[]string
	stopErr error
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(context.Context) error {
	if f.failOn {
		return errors.New("boom")
	}
	*f.log = append(*f.log, "start "+f.name)
	return nil
}

func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop "+f.name)
	return f.stopErr
}

func TestHubLifecycle(t *testing.T) {
	var log []string
	h := NewHub()
	for _, n := range []string{"a", "b"} {
		if err := h.Register(&fakeService{name: n, log: &log}); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.Register(&fakeService{name: "a", log: &log}); err == nil {
		t.Error("duplicate registered")
	}

	if err := h.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.StopAll(); err != nil {
		t.Fatal(err)
	}
	want := []string{"start a", "start b", "stop b", "stop a"}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestHubRollback(t *testing.T) {
	var log []string
	h := NewHub()
	h.Register(&fakeService{name: "a", log: &log})
	h.Register(&fakeService{name: "b", log: &log, failOn: true})

	if err := h.StartAll(context.Background()); err == nil {
		t.Fatal("start failure not reported")
	}
	if len(log) != 2 || log[1] != "stop a" {
		t.Errorf("log = %v", log)
	}
	// Nothing left running
	if err := h.StopAll(); err != nil || len(log) != 2 {
		t.Errorf("StopAll after rollback: %v %v", err, log)
	}
}
