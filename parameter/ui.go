package parameter

import "time"

// Layout
const (
	// HUDLines is the number of readout rows at the top of the view
	HUDLines = 5

	// LegendLines is the number of control legend rows at the bottom of the view
	LegendLines = 1

	// CellsPerMeter is the horizontal world-to-terminal scale; vertical uses half (cells are ~2:1)
	CellsPerMeter = 4.0

	// GridSpacing is the ground grid line spacing in meters
	GridSpacing = 5.0

	// GroundHalfSize is half the side of the ground plane in meters
	GroundHalfSize = 50.0
)

// Terminal Input
const (
	// DefaultKeyHoldWindow is how long a terminal key counts as held after its last press/repeat
	// Terminals report presses and auto-repeats but never releases
	DefaultKeyHoldWindow = 500 * time.Millisecond
)
