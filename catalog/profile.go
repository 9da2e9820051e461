// Package catalog holds the registry of named, immutable vehicle profiles.
//
// A Profile is a plain value with no slices or maps, so every copy handed out by the
// catalog is independent. Per-vehicle mutable state (steering, speed, boost) lives in
// dynamics.State and is never stored here.
package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

var (
	ErrUnknownProfile   = errors.New("unknown vehicle profile")
	ErrInvalidProfile   = errors.New("invalid vehicle profile")
	ErrDuplicateProfile = errors.New("vehicle profile already registered")
)

// Traction selects which wheels receive engine force
type Traction string

const (
	TractionFront Traction = "front"
	TractionRear  Traction = "rear"
	TractionAll   Traction = "all"
)

var (
	frontWheels = [...]int{parameter.WheelFrontLeft, parameter.WheelFrontRight}
	rearWheels  = [...]int{parameter.WheelRearLeft, parameter.WheelRearRight}
	allWheels   = [...]int{parameter.WheelFrontLeft, parameter.WheelFrontRight, parameter.WheelRearLeft, parameter.WheelRearRight}
)

// DrivenWheels returns the wheel indices that receive engine force
func (t Traction) DrivenWheels() []int {
	switch t {
	case TractionFront:
		return frontWheels[:]
	case TractionRear:
		return rearWheels[:]
	default:
		return allWheels[:]
	}
}

// Drives reports whether wheel receives engine force under this traction mode
func (t Traction) Drives(wheel int) bool {
	for _, w := range t.DrivenWheels() {
		if w == wheel {
			return true
		}
	}
	return false
}

// ParseTraction converts a config string into a Traction
func ParseTraction(s string) (Traction, error) {
	switch Traction(s) {
	case TractionFront, TractionRear, TractionAll:
		return Traction(s), nil
	}
	return "", fmt.Errorf("%w: traction %q (want front|rear|all)", ErrInvalidProfile, s)
}

// Physics is the substrate-facing part of a profile
type Physics struct {
	Mass        float64
	HalfExtents mgl64.Vec3
	WheelRadius float64

	SuspensionStiffness  float64
	SuspensionRestLength float64
	DampingRelaxation    float64
	DampingCompression   float64
	MaxSuspensionTravel  float64
	MaxSuspensionForce   float64
	FrictionSlip         float64
	RollInfluence        float64

	// WheelConnections are chassis-local suspension anchor points, indexed FL, FR, RL, RR
	WheelConnections [parameter.WheelCount]mgl64.Vec3

	// ForwardAxis is the chassis-local direction the vehicle drives toward
	// Speed is velocity projected on this axis mapped to world frame, forward-positive
	ForwardAxis mgl64.Vec3

	// SpawnHeight is the chassis Y position at creation
	SpawnHeight float64
}

// Control holds the driver-model tuning
type Control struct {
	MaxSpeed       float64 // informational top speed, m/s
	MaxForce       float64
	MaxBoost       float64 // boost multiplier applied while boost is held, >= 1
	BrakeForce     float64
	HandbrakeForce float64
	MaxSteer       float64 // radians
	SteerSpeed     float64 // rad/s toward target
	SteerReturn    float64 // rad/s back to center
	Traction       Traction

	// ReverseThreshold is the near-stopped speed magnitude below which brake selects reverse
	ReverseThreshold float64
}

// Model points at a renderable asset
type Model struct {
	Path  string
	Scale mgl64.Vec3
}

// WheelAdjustment corrects a wheel asset's orientation relative to the physics wheel frame
// Position records the asset-space anchor the wheel was authored at; only Rotation is applied
type WheelAdjustment struct {
	Position mgl64.Vec3
	Rotation vmath.Euler
}

// Visual holds render-side corrections
type Visual struct {
	Body  Model
	Wheel Model

	// BodyOffset is a chassis-local position offset for the body model
	BodyOffset mgl64.Vec3

	// BodyRotation is applied about local X, Y, Z after copying the chassis orientation
	BodyRotation vmath.Euler

	Wheels [parameter.WheelCount]WheelAdjustment

	// WheelWidth is the procedural placeholder wheel width
	WheelWidth float64
}

// SpeedDisplay converts forward speed (m/s, forward-positive) into the value shown to the driver
type SpeedDisplay struct {
	Scale  float64
	Invert bool
	Unit   string
}

// Convert applies scale and sign
func (d SpeedDisplay) Convert(speed float64) float64 {
	v := speed * d.Scale
	if d.Invert {
		v = -v
	}
	return v
}

// Profile is one named vehicle configuration
type Profile struct {
	ID   string
	Name string

	Physics Physics
	Control Control
	Visual  Visual
	Display SpeedDisplay
}

// WheelCount is fixed for every profile
func (p Profile) WheelCount() int {
	return len(p.Visual.Wheels)
}

// Validate checks invariants required by the controller and synchronizer
func (p Profile) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidProfile, p.ID, fmt.Sprintf(format, args...))
	}

	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProfile)
	}
	for _, r := range p.ID {
		if r == '.' {
			return fail("id must not contain '.'")
		}
	}

	ph := p.Physics
	if !(ph.Mass > 0) {
		return fail("mass must be > 0, got %v", ph.Mass)
	}
	if !(ph.WheelRadius > 0) {
		return fail("wheel radius must be > 0, got %v", ph.WheelRadius)
	}
	if ph.HalfExtents.X() <= 0 || ph.HalfExtents.Y() <= 0 || ph.HalfExtents.Z() <= 0 {
		return fail("half extents must be positive, got %v", ph.HalfExtents)
	}
	if ph.ForwardAxis.Len() == 0 || !vmath.V3IsFinite(ph.ForwardAxis) {
		return fail("forward axis must be a finite non-zero vector")
	}

	c := p.Control
	if !(c.MaxSteer > 0) || c.MaxSteer > math.Pi/2 {
		return fail("max steer must be in (0, pi/2], got %v", c.MaxSteer)
	}
	if !(c.SteerSpeed > 0) || !(c.SteerReturn > 0) {
		return fail("steer speed and return must be > 0")
	}
	if c.MaxBoost < parameter.BoostFloor {
		return fail("max boost must be >= %v, got %v", parameter.BoostFloor, c.MaxBoost)
	}
	if c.MaxForce < 0 || c.BrakeForce < 0 || c.HandbrakeForce < 0 {
		return fail("forces must be >= 0")
	}
	if c.ReverseThreshold < 0 {
		return fail("reverse threshold must be >= 0")
	}
	if _, err := ParseTraction(string(c.Traction)); err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}

	if p.Display.Scale == 0 {
		return fail("speed display scale must be non-zero")
	}

	return nil
}
