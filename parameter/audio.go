package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 48000

	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 100 * time.Millisecond
)

// Engine Tone
const (
	// EngineIdleHz is the tone frequency at standstill
	EngineIdleHz = 55.0

	// EngineMaxHz is the tone frequency at or above EngineToneSpeedCap
	EngineMaxHz = 220.0

	// EngineToneSpeedCap is the |speed| (m/s) mapped to EngineMaxHz
	EngineToneSpeedCap = 30.0

	// EngineThrottleLift is added to the frequency ratio while engine force is applied
	EngineThrottleLift = 0.15

	// EngineToneGlide is the per-sample fraction of the remaining frequency gap closed
	EngineToneGlide = 0.0005

	// EngineToneVolume is the base amplitude of the engine tone
	EngineToneVolume = 0.12

	// BoostShimmerHz is the tremolo rate while boost is above neutral
	BoostShimmerHz = 9.0
)
