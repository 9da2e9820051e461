package render

import "github.com/gdamore/tcell/v2"

// Palette (Tokyo Night)
var (
	ColorBackground = tcell.NewRGBColor(26, 27, 38)
	ColorGrid       = tcell.NewRGBColor(52, 59, 88)
	ColorBoundary   = tcell.NewRGBColor(86, 95, 137)
	ColorObstacle   = tcell.NewRGBColor(224, 175, 104)
	ColorChassis    = tcell.NewRGBColor(122, 162, 247)
	ColorNose       = tcell.NewRGBColor(187, 154, 247)
	ColorWheel      = tcell.NewRGBColor(192, 202, 245)
	ColorHUD        = tcell.NewRGBColor(158, 206, 106)
	ColorLegend     = tcell.NewRGBColor(86, 95, 137)
	ColorOverlay    = tcell.NewRGBColor(36, 40, 59)
	ColorOverlayFg  = tcell.NewRGBColor(125, 207, 255)
)

// Placeholder bodies draw dimmed until their model loads
var ColorPlaceholder = tcell.NewRGBColor(84, 110, 170)

func style(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg).Background(ColorBackground)
}

func panelStyle(fg, bg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}
