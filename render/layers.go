package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
)

// GroundRenderer draws grid dots and the ground boundary
type GroundRenderer struct {
	HalfSize float64
}

func (r GroundRenderer) Render(ctx Context, buf *Buffer) {
	v := ctx.View
	gs := style(ColorGrid)
	bs := style(ColorBoundary)
	for y := v.Top; y < v.Top+v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			p := v.Unproject(x, y)
			if r.HalfSize > 0 && (math.Abs(p.X()) > r.HalfSize || math.Abs(p.Z()) > r.HalfSize) {
				buf.Set(x, y, '░', bs)
				continue
			}
			if onGrid(p.X(), 1/v.Scale) && onGrid(p.Z(), 2/v.Scale) {
				buf.Set(x, y, '·', gs)
			}
		}
	}
}

// onGrid reports whether a cell of width cell centred at c straddles a grid line
func onGrid(c, cell float64) bool {
	m := math.Mod(c, parameter.GridSpacing)
	if m < 0 {
		m += parameter.GridSpacing
	}
	return m < cell/2 || parameter.GridSpacing-m <= cell/2
}

// ObstacleRenderer fills static obstacle footprints
type ObstacleRenderer struct {
	Obstacles []Obstacle
}

func (r ObstacleRenderer) Render(ctx Context, buf *Buffer) {
	v := ctx.View
	st := style(ColorObstacle)
	for _, o := range r.Obstacles {
		x0, y0 := v.Project(o.Position.Sub(o.HalfExtents))
		x1, y1 := v.Project(o.Position.Add(o.HalfExtents))
		for y := max(y0, v.Top); y <= y1 && v.InMap(y); y++ {
			for x := x0; x <= x1; x++ {
				buf.Set(x, y, '▓', st)
			}
		}
	}
}

// VehicleRenderer draws the chassis footprint with its nose and the wheels
type VehicleRenderer struct{}

func (VehicleRenderer) Render(ctx Context, buf *Buffer) {
	veh := ctx.Vehicle
	v := ctx.View
	he := veh.HalfExtents

	body := style(ColorChassis)
	if veh.Placeholder {
		body = style(ColorPlaceholder)
	}
	nose := style(ColorNose)

	// Bounding box of the rotated footprint
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, sx := range []float64{-1, 1} {
		for _, sz := range []float64{-1, 1} {
			x, y := v.Project(veh.Pose.LocalToWorld(mgl64.Vec3{sx * he.X(), 0, sz * he.Z()}))
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	inv := veh.Pose.Orientation.Conjugate()
	halfLen := math.Abs(veh.Forward.Dot(he))
	for y := minY; y <= maxY; y++ {
		if !v.InMap(y) {
			continue
		}
		for x := minX; x <= maxX; x++ {
			p := v.Unproject(x, y)
			p[1] = veh.Pose.Position.Y()
			local := inv.Rotate(p.Sub(veh.Pose.Position))
			if math.Abs(local.X()) > he.X() || math.Abs(local.Z()) > he.Z() {
				continue
			}
			if local.Dot(veh.Forward) > halfLen*0.5 {
				buf.Set(x, y, '▲', nose)
			} else {
				buf.Set(x, y, '█', body)
			}
		}
	}

	ws := style(ColorWheel)
	for _, w := range veh.Wheels {
		x, y := v.Project(w)
		if v.InMap(y) {
			buf.Set(x, y, 'o', ws)
		}
	}
}

// HUDRenderer writes the readout above the map and the legend below it
type HUDRenderer struct{}

func (HUDRenderer) Render(ctx Context, buf *Buffer) {
	hs := style(ColorHUD)
	for i, line := range ctx.Readout {
		if i >= parameter.HUDLines {
			break
		}
		buf.Text(1, i, line, hs)
	}
	if ctx.Legend != "" && ctx.Height > 0 {
		buf.Text(1, ctx.Height-1, ctx.Legend, style(ColorLegend))
	}
}

// OverlayRenderer draws the dev overlay panel at the top right while enabled
type OverlayRenderer struct {
	Visible bool
}

func (r *OverlayRenderer) IsVisible() bool { return r.Visible }

// Toggle flips visibility and returns the new state
func (r *OverlayRenderer) Toggle() bool {
	r.Visible = !r.Visible
	return r.Visible
}

func (r *OverlayRenderer) Render(ctx Context, buf *Buffer) {
	if len(ctx.Status) == 0 {
		return
	}
	width := 0
	for _, l := range ctx.Status {
		width = max(width, len([]rune(l)))
	}
	width += 2
	x0 := max(ctx.Width-width-1, 0)
	st := panelStyle(ColorOverlayFg, ColorOverlay)
	for i, l := range ctx.Status {
		y := parameter.HUDLines + i
		if y >= ctx.Height-parameter.LegendLines {
			break
		}
		for x := x0; x < x0+width; x++ {
			buf.Set(x, y, ' ', st)
		}
		buf.Text(x0+1, y, l, st)
	}
}
