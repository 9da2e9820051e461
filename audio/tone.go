package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/vi-drive/parameter"
)

// TargetHz maps chassis speed and throttle to an engine tone frequency
func TargetHz(speed float64, throttle bool) float64 {
	ratio := math.Abs(speed) / parameter.EngineToneSpeedCap
	if throttle {
		ratio += parameter.EngineThrottleLift
	}
	ratio = math.Min(ratio, 1)
	return parameter.EngineIdleHz + (parameter.EngineMaxHz-parameter.EngineIdleHz)*ratio
}

// EngineTone is an endless streamer whose pitch glides toward a target
type EngineTone struct {
	mu sync.Mutex
	sr beep.SampleRate

	freq    float64
	target  float64
	shimmer bool

	phase        float64
	shimmerPhase float64
}

func NewEngineTone(sr beep.SampleRate) *EngineTone {
	return &EngineTone{
		sr:     sr,
		freq:   parameter.EngineIdleHz,
		target: parameter.EngineIdleHz,
	}
}

// Set updates the pitch target and the boost shimmer
func (t *EngineTone) Set(speed float64, throttle bool, boost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = TargetHz(speed, throttle)
	t.shimmer = boost > parameter.BoostFloor
}

// Freq returns the current, still gliding, frequency
func (t *EngineTone) Freq() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freq
}

func (t *EngineTone) Target() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target
}

func (t *EngineTone) Shimmer() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shimmer
}

func (t *EngineTone) Stream(samples [][2]float64) (n int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rate := float64(t.sr)
	for i := range samples {
		t.freq += (t.target - t.freq) * parameter.EngineToneGlide

		t.phase += 2 * math.Pi * t.freq / rate
		if t.phase > 2*math.Pi {
			t.phase -= 2 * math.Pi
		}

		// Fundamental plus a rough second harmonic
		s := math.Sin(t.phase) + 0.3*math.Sin(2*t.phase)
		amp := parameter.EngineToneVolume
		if t.shimmer {
			t.shimmerPhase += 2 * math.Pi * parameter.BoostShimmerHz / rate
			if t.shimmerPhase > 2*math.Pi {
				t.shimmerPhase -= 2 * math.Pi
			}
			amp *= 0.75 + 0.25*math.Sin(t.shimmerPhase)
		}

		samples[i][0] = s * amp
		samples[i][1] = s * amp
	}
	return len(samples), true
}

func (t *EngineTone) Err() error {
	return nil
}
