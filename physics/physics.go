// Package physics defines the contract between the vehicle core and a rigid-body
// raycast-vehicle substrate.
//
// The core never integrates motion itself. It writes steering, engine and brake values
// per wheel and reads back chassis velocity and wheel/chassis poses after World.Step.
// Sign convention: a positive engine force drives the vehicle along its spec ForwardAxis,
// and a positive steering value turns toward the vehicle's left (positive yaw about +Y).
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

var (
	ErrInvalidSpec    = errors.New("invalid vehicle spec")
	ErrUnknownVehicle = errors.New("vehicle not in world")
)

// Vehicle is a raycast vehicle handle owned by a World
type Vehicle interface {
	SetSteeringValue(angle float64, wheel int)
	ApplyEngineForce(force float64, wheel int)
	SetBrake(force float64, wheel int)

	// UpdateWheelTransform recomputes the world transform of one wheel
	UpdateWheelTransform(wheel int)
	// WheelTransform returns the transform computed by the last UpdateWheelTransform
	WheelTransform(wheel int) vmath.Pose
	WheelSteering(wheel int) float64

	ChassisVelocity() mgl64.Vec3
	ChassisPose() vmath.Pose
	// VectorToWorldFrame rotates a chassis-local direction into world space
	VectorToWorldFrame(local mgl64.Vec3) mgl64.Vec3

	WheelCount() int
}

// World owns vehicles and advances the simulation
type World interface {
	AddVehicle(spec VehicleSpec) (Vehicle, error)
	RemoveVehicle(v Vehicle)
	Step(dt float64)
}

// WheelOptions are the per-wheel suspension and friction parameters
type WheelOptions struct {
	Radius                       float64
	DirectionLocal               mgl64.Vec3
	AxleLocal                    mgl64.Vec3
	ConnectionPoint              mgl64.Vec3
	SuspensionStiffness          float64
	SuspensionRestLength         float64
	DampingRelaxation            float64
	DampingCompression           float64
	MaxSuspensionForce           float64
	MaxSuspensionTravel          float64
	FrictionSlip                 float64
	RollInfluence                float64
	CustomSlidingRotationalSpeed float64
	UseCustomSlidingRotation     bool
}

// VehicleSpec describes a vehicle to create
type VehicleSpec struct {
	ProfileID   string
	Mass        float64
	HalfExtents mgl64.Vec3
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	ForwardAxis mgl64.Vec3
	Wheels      [parameter.WheelCount]WheelOptions
}

// SpecFromProfile builds a spawn-ready spec at the origin raised to the profile spawn height
func SpecFromProfile(p catalog.Profile) VehicleSpec {
	ph := p.Physics
	spec := VehicleSpec{
		ProfileID:   p.ID,
		Mass:        ph.Mass,
		HalfExtents: ph.HalfExtents,
		Position:    mgl64.Vec3{0, ph.SpawnHeight, 0},
		Orientation: mgl64.QuatIdent(),
		ForwardAxis: vmath.V3Normalize(ph.ForwardAxis),
	}
	for i := range spec.Wheels {
		spec.Wheels[i] = WheelOptions{
			Radius:                       ph.WheelRadius,
			DirectionLocal:               mgl64.Vec3{0, -1, 0},
			AxleLocal:                    mgl64.Vec3{0, 0, 1},
			ConnectionPoint:              ph.WheelConnections[i],
			SuspensionStiffness:          ph.SuspensionStiffness,
			SuspensionRestLength:         ph.SuspensionRestLength,
			DampingRelaxation:            ph.DampingRelaxation,
			DampingCompression:           ph.DampingCompression,
			MaxSuspensionForce:           ph.MaxSuspensionForce,
			MaxSuspensionTravel:          ph.MaxSuspensionTravel,
			FrictionSlip:                 ph.FrictionSlip,
			RollInfluence:                ph.RollInfluence,
			CustomSlidingRotationalSpeed: parameter.CustomSlidingRotationalSpeed,
			UseCustomSlidingRotation:     true,
		}
	}
	return spec
}

// Validate checks a spec before a substrate accepts it
func (s VehicleSpec) Validate() error {
	if !(s.Mass > 0) {
		return ErrInvalidSpec
	}
	if s.ForwardAxis.Len() == 0 || !vmath.V3IsFinite(s.ForwardAxis) {
		return ErrInvalidSpec
	}
	for _, w := range s.Wheels {
		if !(w.Radius > 0) {
			return ErrInvalidSpec
		}
	}
	return nil
}

// ForwardSpeed projects chassis velocity onto the world-space forward axis
func ForwardSpeed(v Vehicle, localForward mgl64.Vec3) float64 {
	return v.ChassisVelocity().Dot(v.VectorToWorldFrame(localForward))
}
