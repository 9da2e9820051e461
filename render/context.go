package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

// View maps the ground plane to terminal cells, centred on Center
// World +X runs right and +Z runs down; each cell row covers twice the meters of a column
type View struct {
	Center mgl64.Vec3
	Width  int
	Height int
	// Top is the first map row; rows above belong to the HUD
	Top int
	// Scale is columns per meter
	Scale float64
}

// NewView lays out a map between the HUD and the legend
func NewView(center mgl64.Vec3, width, height int) View {
	return View{
		Center: center,
		Width:  width,
		Height: max(height-parameter.HUDLines-parameter.LegendLines, 0),
		Top:    parameter.HUDLines,
		Scale:  parameter.CellsPerMeter,
	}
}

func (v View) originCol() float64 { return float64(v.Width) / 2 }
func (v View) originRow() float64 { return float64(v.Top) + float64(v.Height)/2 }

// Project returns the cell containing world point p
func (v View) Project(p mgl64.Vec3) (x, y int) {
	fx := v.originCol() + (p.X()-v.Center.X())*v.Scale
	fy := v.originRow() + (p.Z()-v.Center.Z())*v.Scale/2
	return int(math.Floor(fx)), int(math.Floor(fy))
}

// Unproject returns the ground point at the centre of cell (x, y)
func (v View) Unproject(x, y int) mgl64.Vec3 {
	wx := v.Center.X() + (float64(x)+0.5-v.originCol())/v.Scale
	wz := v.Center.Z() + (float64(y)+0.5-v.originRow())/(v.Scale/2)
	return mgl64.Vec3{wx, 0, wz}
}

// InMap reports whether row y is inside the map region
func (v View) InMap(y int) bool {
	return y >= v.Top && y < v.Top+v.Height
}

// Obstacle is a static box drawn on the ground
type Obstacle struct {
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// VehicleView is the driven vehicle as drawn this frame
type VehicleView struct {
	Pose        vmath.Pose
	HalfExtents mgl64.Vec3
	// Forward is the profile's local forward axis
	Forward     mgl64.Vec3
	Wheels      []mgl64.Vec3
	Placeholder bool
}

// Context is everything one frame draws
type Context struct {
	Width  int
	Height int
	View   View

	Vehicle VehicleView

	// Readout is the HUD text, one line per row
	Readout []string
	Legend  string
	// Status holds dev overlay lines
	Status  []string
}

// NewContext builds a context whose view is centred on lookAt
func NewContext(width, height int, lookAt mgl64.Vec3) Context {
	return Context{
		Width:  width,
		Height: height,
		View:   NewView(lookAt, width, height),
	}
}
