// Package audio plays an engine tone that follows the driven vehicle.
// A missing audio device leaves the manager silent; the sandbox keeps running.
package audio

import (
	"context"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/dynamics"
	"github.com/lixenwraith/vi-drive/parameter"
)

const sampleRate = beep.SampleRate(parameter.AudioSampleRate)

// Source is the vehicle state the tone follows
type Source interface {
	RawSpeed() float64
	State() dynamics.State
	Output() dynamics.Output
}

// SoundManager owns the speaker and the engine tone
type SoundManager struct {
	mu  sync.Mutex
	log zerolog.Logger
	src Source

	tone *EngineTone
	ctrl *beep.Ctrl

	enabled     bool
	initialized bool
	silent      bool

	// Swapped in tests; the real speaker needs a device
	initSpeaker func(beep.SampleRate, int) error
	play        func(...beep.Streamer)
	clear       func()
}

// NewSoundManager creates a manager; volume is linear gain, 0 mutes
func NewSoundManager(src Source, enabled bool, volume float64, log zerolog.Logger) *SoundManager {
	tone := NewEngineTone(sampleRate)
	vol := &effects.Volume{
		Streamer: tone,
		Base:     2,
		Silent:   volume <= 0,
	}
	if volume > 0 {
		vol.Volume = math.Log2(volume)
	}
	return &SoundManager{
		log:         log,
		src:         src,
		tone:        tone,
		ctrl:        &beep.Ctrl{Streamer: vol},
		enabled:     enabled,
		initSpeaker: speaker.Init,
		play:        speaker.Play,
		clear:       speaker.Clear,
	}
}

func (sm *SoundManager) Name() string { return "audio" }

// Start initializes the speaker; failure switches to silent mode and is not an error
func (sm *SoundManager) Start(context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if !sm.enabled {
		sm.silent = true
		sm.log.Info().Msg("audio disabled")
		return nil
	}

	if err := sm.initSpeaker(sampleRate, sampleRate.N(parameter.AudioBufferDuration)); err != nil {
		sm.silent = true
		sm.log.Warn().Err(err).Msg("audio unavailable, continuing without sound")
		return nil
	}

	sm.play(sm.ctrl)
	sm.initialized = true
	sm.silent = false
	return nil
}

// Stop silences the tone and clears the speaker
func (sm *SoundManager) Stop() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}
	sm.ctrl.Paused = true
	sm.clear()
	sm.initialized = false
	return nil
}

// Update retargets the tone from the source vehicle
func (sm *SoundManager) Update(float64) {
	if sm.src == nil {
		return
	}
	out := sm.src.Output()
	throttle := false
	for _, f := range out.EngineForce {
		if f != 0 {
			throttle = true
			break
		}
	}
	sm.tone.Set(sm.src.RawSpeed(), throttle, sm.src.State().Boost)
}

// ToggleMute flips the pause state and returns true when now muted
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	sm.ctrl.Paused = !sm.ctrl.Paused
	return sm.ctrl.Paused
}

// Silent reports whether no device is playing
func (sm *SoundManager) Silent() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.silent || !sm.initialized
}

func (sm *SoundManager) Tone() *EngineTone { return sm.tone }
