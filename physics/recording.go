package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

// RecordingVehicle is a deterministic Vehicle that stores every write
// Tests set Velocity, Chassis and Wheels directly; UpdateWheelTransform publishes Wheels
type RecordingVehicle struct {
	Velocity mgl64.Vec3
	Chassis  vmath.Pose
	Wheels   [parameter.WheelCount]vmath.Pose

	Steering    [parameter.WheelCount]float64
	EngineForce [parameter.WheelCount]float64
	Brake       [parameter.WheelCount]float64

	// UpdateCalls counts UpdateWheelTransform per wheel
	UpdateCalls [parameter.WheelCount]int

	published [parameter.WheelCount]vmath.Pose
}

// NewRecordingVehicle returns a vehicle at rest at the origin with identity orientations
func NewRecordingVehicle() *RecordingVehicle {
	v := &RecordingVehicle{Chassis: vmath.IdentityPose()}
	for i := range v.Wheels {
		v.Wheels[i] = vmath.IdentityPose()
		v.published[i] = vmath.IdentityPose()
	}
	return v
}

func (v *RecordingVehicle) SetSteeringValue(angle float64, wheel int) { v.Steering[wheel] = angle }
func (v *RecordingVehicle) ApplyEngineForce(force float64, wheel int) { v.EngineForce[wheel] = force }
func (v *RecordingVehicle) SetBrake(force float64, wheel int)         { v.Brake[wheel] = force }

func (v *RecordingVehicle) UpdateWheelTransform(wheel int) {
	v.UpdateCalls[wheel]++
	v.published[wheel] = v.Wheels[wheel]
}

func (v *RecordingVehicle) WheelTransform(wheel int) vmath.Pose { return v.published[wheel] }
func (v *RecordingVehicle) WheelSteering(wheel int) float64     { return v.Steering[wheel] }
func (v *RecordingVehicle) ChassisVelocity() mgl64.Vec3         { return v.Velocity }
func (v *RecordingVehicle) ChassisPose() vmath.Pose             { return v.Chassis }
func (v *RecordingVehicle) WheelCount() int                     { return parameter.WheelCount }

func (v *RecordingVehicle) VectorToWorldFrame(local mgl64.Vec3) mgl64.Vec3 {
	return v.Chassis.Orientation.Rotate(local)
}

// RecordingWorld hands out RecordingVehicles and records lifecycle calls
type RecordingWorld struct {
	Specs    []VehicleSpec
	Vehicles []*RecordingVehicle
	Removed  int
	Steps    []float64

	// FailNext makes the next AddVehicle return this error
	FailNext error
}

func (w *RecordingWorld) AddVehicle(spec VehicleSpec) (Vehicle, error) {
	if err := w.FailNext; err != nil {
		w.FailNext = nil
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	v := NewRecordingVehicle()
	v.Chassis = vmath.Pose{Position: spec.Position, Orientation: spec.Orientation}
	w.Specs = append(w.Specs, spec)
	w.Vehicles = append(w.Vehicles, v)
	return v, nil
}

func (w *RecordingWorld) RemoveVehicle(v Vehicle) {
	for i, rv := range w.Vehicles {
		if Vehicle(rv) == v {
			w.Vehicles = append(w.Vehicles[:i], w.Vehicles[i+1:]...)
			w.Removed++
			return
		}
	}
}

func (w *RecordingWorld) Step(dt float64) { w.Steps = append(w.Steps, dt) }

// Last returns the most recently added vehicle still in the world
func (w *RecordingWorld) Last() *RecordingVehicle {
	if len(w.Vehicles) == 0 {
		return nil
	}
	return w.Vehicles[len(w.Vehicles)-1]
}
