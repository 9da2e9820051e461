package asset

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/scene"
)

// Visuals are the render nodes of one vehicle
type Visuals struct {
	Body   *scene.Transform
	Wheels [parameter.WheelCount]*scene.Transform
}

// WheelNodes returns the wheels as scene nodes, indexed FL, FR, RL, RR
func (v *Visuals) WheelNodes() []scene.Node {
	nodes := make([]scene.Node, len(v.Wheels))
	for i, w := range v.Wheels {
		nodes[i] = w
	}
	return nodes
}

// BodyNode returns the body as a scene node, nil when absent
func (v *Visuals) BodyNode() scene.Node {
	if v.Body == nil {
		return nil
	}
	return v.Body
}

// IsPlaceholder reports whether any part is still procedural
func (v *Visuals) IsPlaceholder() bool {
	if v.Body == nil || v.Body.Placeholder {
		return true
	}
	for _, w := range v.Wheels {
		if w == nil || w.Placeholder {
			return true
		}
	}
	return false
}

// Placeholder builds procedural geometry sized from p: a chassis box with a
// front marker and four cylinder wheels
func Placeholder(p catalog.Profile) Visuals {
	var v Visuals

	body := scene.NewTransform(p.ID+"/body", scene.ShapeBox)
	body.Size = p.Physics.HalfExtents.Mul(2)
	body.Color = parameter.PlaceholderBodyColor
	body.Placeholder = true

	fwd := p.Physics.ForwardAxis.Normalize()
	halfLen := math.Abs(fwd.Dot(p.Physics.HalfExtents))
	marker := scene.NewTransform(p.ID+"/marker", scene.ShapeBox)
	marker.Size = mgl64.Vec3{parameter.PlaceholderMarkerX, parameter.PlaceholderMarkerY, parameter.PlaceholderMarkerZ}
	marker.Color = parameter.PlaceholderMarkerColor
	marker.Placeholder = true
	marker.SetPosition(fwd.Mul(halfLen - parameter.PlaceholderMarkerInset).Add(mgl64.Vec3{0, parameter.PlaceholderMarkerLift, 0}))
	body.Add(marker)
	v.Body = body

	width := p.Visual.WheelWidth
	if width <= 0 {
		width = parameter.PlaceholderWheelWidth
	}
	s := parameter.PlaceholderWheelScale
	for i := range v.Wheels {
		w := scene.NewTransform(fmt.Sprintf("%s/wheel%d", p.ID, i), scene.ShapeCylinder)
		w.Size = mgl64.Vec3{p.Physics.WheelRadius, width, parameter.PlaceholderWheelSegments}
		w.Scale = mgl64.Vec3{s, s, s}
		w.Color = parameter.PlaceholderWheelColor
		w.Placeholder = true
		v.Wheels[i] = w
	}
	return v
}

// Apply swaps loaded parts in r into v, keeping current poses so the swap is seamless
// Parts r did not load stay as they are
func (v *Visuals) Apply(r Result) {
	if r.Body != nil {
		if v.Body != nil {
			r.Body.SetPosition(v.Body.Position())
			r.Body.SetOrientation(v.Body.Orientation())
		}
		v.Body = r.Body
	}
	for i, w := range r.Wheels {
		if w == nil {
			continue
		}
		if old := v.Wheels[i]; old != nil {
			w.SetPosition(old.Position())
			w.SetOrientation(old.Orientation())
		}
		v.Wheels[i] = w
	}
}
