package parameter

import "time"

// Frame Loop
const (
	// DefaultTargetFPS is the frame gate rate when config does not set one
	DefaultTargetFPS = 240

	// MinTargetFPS guards against a zero or negative gate rate
	MinTargetFPS = 1

	// MaxFrameStep is the upper bound on dt handed to controllers and the substrate (1/30 s)
	// Larger steps destabilise the suspension solve after frame drops
	MaxFrameStep = 1.0 / 30.0

	// IdleSleep is how long the sandbox loop sleeps when the frame gate rejects a pass
	IdleSleep = 1 * time.Millisecond

	// MetricsExportInterval is the default period of the metrics exporter
	MetricsExportInterval = 10 * time.Second

	// MetricsShutdownTimeout bounds the final metrics flush on exit
	MetricsShutdownTimeout = 2 * time.Second
)

// Asset Loading
const (
	// AssetResultBuffer is the capacity of the completed-load channel drained each frame
	AssetResultBuffer = 4

	// AssetLoadTimeout bounds a single body+wheels load
	AssetLoadTimeout = 15 * time.Second
)
