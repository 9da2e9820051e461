// Package camera computes a follow camera with free orbiting around a moving target.
//
// Each frame the camera is first translated by the target's displacement so the relative
// offset survives motion. While the pointer is held the user orbits with inertia; otherwise
// ModeChase additionally blends the camera toward a point behind the target. Orbit damping,
// distance bounds and polar bounds are applied last, every frame, in every mode.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Mode selects the no-drag follow rule
type Mode uint8

const (
	// ModeTranslate keeps the offset to the target fixed
	ModeTranslate Mode = iota
	// ModeChase re-places the camera behind and above the target
	ModeChase
)

func (m Mode) String() string {
	if m == ModeChase {
		return "chase"
	}
	return "translate"
}

// ParseMode maps a config string to a Mode, defaulting to ModeChase
func ParseMode(s string) Mode {
	if s == "translate" {
		return ModeTranslate
	}
	return ModeChase
}

// Subject is the tracked entity as seen by the camera this frame
type Subject struct {
	Position mgl64.Vec3
	// Heading is the world-space forward direction of the target
	Heading mgl64.Vec3
	// Speed is forward-positive
	Speed float64
}

// Input is pointer and wheel input for one frame
type Input struct {
	Dragging bool
	// Delta is the pointer movement since the last frame, meaningful only while dragging
	Delta mgl64.Vec2
	// Zoom is scroll steps, positive zooms in
	Zoom float64
}

// Pose is the camera output
type Pose struct {
	Position mgl64.Vec3
	LookAt   mgl64.Vec3
	FOV      float64
}

// Preset is a named chase distance and field of view
type Preset struct {
	Name     string
	Distance float64
	FOV      float64
}

var (
	PresetNear        = Preset{Name: "near", Distance: parameter.CameraNearDistance, FOV: parameter.CameraNearFOV}
	PresetFar         = Preset{Name: "far", Distance: parameter.CameraFarDistance, FOV: parameter.CameraFarFOV}
	PresetFirstPerson = Preset{Name: "first_person", Distance: parameter.CameraFirstPersonDistance, FOV: parameter.CameraFirstPersonFOV}
)

// PresetByName returns the preset with name, or PresetNear
func PresetByName(name string) Preset {
	switch name {
	case PresetFar.Name:
		return PresetFar
	case PresetFirstPerson.Name:
		return PresetFirstPerson
	}
	return PresetNear
}

// Config holds camera tuning
type Config struct {
	Mode Mode

	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64
	MaxPolarAngle float64

	Damping       bool
	DampingFactor float64

	RotateSpeed        float64
	ZoomSpeed          float64
	Friction           float64
	MinAngularVelocity float64

	ChaseDistance float64
	ChaseHeight   float64
	ChaseLerpRate float64
	ReverseSpeed  float64

	FOV float64
}

// DefaultConfig returns the chase camera tuning
func DefaultConfig() Config {
	return Config{
		Mode:               ModeChase,
		MinDistance:        parameter.CameraMinDistance,
		MaxDistance:        parameter.CameraMaxDistance,
		MinPolarAngle:      parameter.CameraMinPolarAngle,
		MaxPolarAngle:      parameter.CameraMaxPolarAngle,
		Damping:            true,
		DampingFactor:      parameter.CameraDampingFactor,
		RotateSpeed:        parameter.CameraRotateSpeed,
		ZoomSpeed:          parameter.CameraZoomSpeed,
		Friction:           parameter.CameraOrbitFriction,
		MinAngularVelocity: parameter.CameraMinAngularVelocity,
		ChaseDistance:      parameter.CameraChaseDistance,
		ChaseHeight:        parameter.CameraChaseHeight,
		ChaseLerpRate:      parameter.CameraChaseLerpRate,
		ReverseSpeed:       parameter.CameraReverseSpeed,
		FOV:                parameter.CameraNearFOV,
	}
}

// State is the camera's mutable state
type State struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Offset   Spherical

	// AngularVelocity is (azimuth, polar) radians per frame from pointer input
	AngularVelocity mgl64.Vec2
	// Pending is the residual orbit delta not yet applied by damping
	Pending Spherical

	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64
	MaxPolarAngle float64
}

// Controller owns one camera
type Controller struct {
	cfg     Config
	state   State
	scale   float64
	last    mgl64.Vec3
	enabled bool
}

// NewController places the camera behind subject at the chase offset
func NewController(cfg Config, subject Subject) *Controller {
	c := &Controller{cfg: cfg, enabled: true, scale: 1}
	c.state.MinDistance = cfg.MinDistance
	c.state.MaxDistance = cfg.MaxDistance
	c.state.MinPolarAngle = cfg.MinPolarAngle
	c.state.MaxPolarAngle = cfg.MaxPolarAngle
	c.Reset(subject)
	return c
}

// Reset snaps the camera to the chase position of subject and clears inertia
func (c *Controller) Reset(subject Subject) {
	c.state.Target = subject.Position
	c.state.AngularVelocity = mgl64.Vec2{}
	c.state.Pending = Spherical{}
	c.scale = 1
	c.last = subject.Position
	if p, ok := c.chasePoint(subject); ok {
		c.state.Position = p
	} else {
		c.state.Position = subject.Position.Add(mgl64.Vec3{0, c.cfg.ChaseHeight, c.cfg.ChaseDistance})
	}
	c.orbit()
}

// Enable toggles user orbit and zoom input; following continues while disabled
func (c *Controller) Enable(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.state.AngularVelocity = mgl64.Vec2{}
	}
}

// SetDamping toggles orbit smoothing; factor is used only when enabling
func (c *Controller) SetDamping(enabled bool, factor float64) {
	c.cfg.Damping = enabled
	if enabled && factor > 0 {
		c.cfg.DampingFactor = vmath.Clamp01(factor)
	}
}

// SetMode switches the no-drag follow rule
func (c *Controller) SetMode(m Mode) { c.cfg.Mode = m }

// ApplyPreset sets the chase distance and field of view
// Distance bounds still apply to the orbit radius
func (c *Controller) ApplyPreset(p Preset) {
	c.cfg.ChaseDistance = p.Distance
	c.cfg.FOV = p.FOV
}

// Zoom queues scroll steps, positive moves closer
func (c *Controller) Zoom(steps float64) {
	if !c.enabled || steps == 0 {
		return
	}
	s := math.Pow(0.95, c.cfg.ZoomSpeed*math.Abs(steps))
	if steps > 0 {
		c.scale *= s
	} else {
		c.scale /= s
	}
}

func (c *Controller) Config() Config { return c.cfg }
func (c *Controller) State() State   { return c.state }

// Pose returns the camera output of the last update
func (c *Controller) Pose() Pose {
	return Pose{Position: c.state.Position, LookAt: c.state.Target, FOV: c.cfg.FOV}
}

// Update advances the camera by dt seconds
func (c *Controller) Update(dt float64, subject Subject, in Input) Pose {
	dt = vmath.Clamp(dt, 0, parameter.MaxFrameStep)
	if math.IsNaN(dt) {
		dt = 0
	}
	if !c.enabled {
		in = Input{}
	}

	cur := subject.Position
	if move := cur.Sub(c.last); move.Len() > 0 {
		c.state.Position = c.state.Position.Add(move)
	}

	c.updateAngularVelocity(in)
	c.Zoom(in.Zoom)

	if c.cfg.Mode == ModeChase && !in.Dragging {
		if p, ok := c.chasePoint(subject); ok {
			c.state.Position = vmath.V3Lerp(c.state.Position, p, vmath.LerpFactor(c.cfg.ChaseLerpRate, dt))
		}
	}

	c.state.Target = cur
	c.last = cur
	c.orbit()
	return c.Pose()
}

func (c *Controller) updateAngularVelocity(in Input) {
	av := &c.state.AngularVelocity
	if in.Dragging {
		*av = in.Delta.Mul(c.cfg.RotateSpeed)
	} else {
		*av = av.Mul(c.cfg.Friction)
		if av.Len() < c.cfg.MinAngularVelocity {
			*av = mgl64.Vec2{}
		}
	}
	// Pointer right orbits the camera left around the target, pointer down raises it
	c.state.Pending.Theta -= av.X()
	c.state.Pending.Phi -= av.Y()
}

// chasePoint is behind and above the subject; in front of it while reversing
func (c *Controller) chasePoint(s Subject) (mgl64.Vec3, bool) {
	dir := mgl64.Vec3{s.Heading.X(), 0, s.Heading.Z()}
	if dir.Len() == 0 {
		return mgl64.Vec3{}, false
	}
	dir = dir.Normalize()
	if s.Speed >= c.cfg.ReverseSpeed {
		dir = dir.Mul(-1)
	}
	p := s.Position.Add(dir.Mul(c.cfg.ChaseDistance))
	p[1] = s.Position.Y() + c.cfg.ChaseHeight
	return p, true
}

// orbit applies pending rotation, zoom and all bounds around the target
func (c *Controller) orbit() {
	st := &c.state
	sph := SphericalFromVec(st.Position.Sub(st.Target))

	if c.cfg.Damping {
		sph.Theta += st.Pending.Theta * c.cfg.DampingFactor
		sph.Phi += st.Pending.Phi * c.cfg.DampingFactor
	} else {
		sph.Theta += st.Pending.Theta
		sph.Phi += st.Pending.Phi
	}

	sph.Phi = vmath.Clamp(sph.Phi, st.MinPolarAngle, st.MaxPolarAngle)
	sph.makeSafe()

	sph.Radius = vmath.Clamp(sph.Radius*c.scale, st.MinDistance, st.MaxDistance)
	c.scale = 1

	st.Offset = sph
	st.Position = st.Target.Add(sph.Vec())

	if c.cfg.Damping {
		st.Pending.Theta *= 1 - c.cfg.DampingFactor
		st.Pending.Phi *= 1 - c.cfg.DampingFactor
	} else {
		st.Pending = Spherical{}
	}
}
