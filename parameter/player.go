package parameter

import "time"

// Placeholder Geometry
const (
	// PlaceholderWheelWidth is the cylinder width of procedural wheels
	PlaceholderWheelWidth = 0.12

	// PlaceholderWheelSegments is the radial segment count of procedural wheels
	PlaceholderWheelSegments = 32

	// Front marker box size (x, y, z)
	PlaceholderMarkerX = 0.1
	PlaceholderMarkerY = 0.5
	PlaceholderMarkerZ = 1.3

	// Placeholder colors, 0xRRGGBB
	PlaceholderBodyColor   = 0x1c1d1f
	PlaceholderMarkerColor = 0x3e7efa
	PlaceholderWheelColor  = 0x0f0f0f
)

// Telemetry
const (
	// TelemetrySampleHz is the default telemetry sampling rate
	TelemetrySampleHz = 10.0

	// TelemetryQueueSize bounds frames waiting for the sink worker
	TelemetryQueueSize = 256

	// TelemetryBatchSize is the number of frames written per store transaction
	TelemetryBatchSize = 64
)

// Placeholder Layout
const (
	// PlaceholderMarkerInset is the marker distance back from the chassis front face
	PlaceholderMarkerInset = 0.6

	// PlaceholderMarkerLift raises the marker above the chassis centre
	PlaceholderMarkerLift = 0.15

	// PlaceholderWheelScale enlarges procedural wheels to cover the contact radius
	PlaceholderWheelScale = 1.1
)

// Telemetry Delivery
const (
	// TelemetryFlushInterval is the longest a partial batch waits before it is written
	TelemetryFlushInterval = 1 * time.Second

	// TelemetrySinkTimeout bounds one sink write
	TelemetrySinkTimeout = 5 * time.Second

	// TelemetryMeasurement is the influx measurement name
	TelemetryMeasurement = "vehicle_telemetry"

	// StreamClientBuffer is the per-client queue of the websocket stream
	StreamClientBuffer = 64

	// StreamWriteWait bounds a single websocket write
	StreamWriteWait = 5 * time.Second
)
