// Package arcade is a kinematic stand-in for a raycast-vehicle substrate.
//
// Chassis motion is a single longitudinal speed along the VehicleSpec forward axis with a
// bicycle-model yaw rate from the front wheel steering. Suspension is held at rest length,
// so the chassis rides at a constant height above a flat ground plane.
package arcade

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/vmath"
)

// World holds vehicles on a bounded flat ground centred on the origin
type World struct {
	halfSize float64
	vehicles []*Vehicle
}

// NewWorld creates a world whose ground spans [-halfSize, halfSize] on X and Z
// A non-positive halfSize leaves the ground unbounded
func NewWorld(halfSize float64) *World {
	return &World{halfSize: halfSize}
}

// AddVehicle validates spec and places a vehicle at rest
func (w *World) AddVehicle(spec physics.VehicleSpec) (physics.Vehicle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	v := newVehicle(spec)
	w.vehicles = append(w.vehicles, v)
	return v, nil
}

// RemoveVehicle drops v from the world; unknown handles are ignored
func (w *World) RemoveVehicle(pv physics.Vehicle) {
	for i, v := range w.vehicles {
		if physics.Vehicle(v) == pv {
			w.vehicles = append(w.vehicles[:i], w.vehicles[i+1:]...)
			return
		}
	}
}

// Step advances every vehicle by dt seconds
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, v := range w.vehicles {
		v.integrate(dt)
		v.confine(w.halfSize)
	}
}

// Len returns the number of vehicles in the world
func (w *World) Len() int {
	return len(w.vehicles)
}

// Vehicle is the arcade implementation of physics.Vehicle
type Vehicle struct {
	spec physics.VehicleSpec

	position   mgl64.Vec3
	spawn      mgl64.Quat
	yaw        float64
	speed      float64
	wheelbase  float64
	rideHeight float64
	spinAxis   mgl64.Vec3

	steering [parameter.WheelCount]float64
	engine   [parameter.WheelCount]float64
	brake    [parameter.WheelCount]float64
	spin     [parameter.WheelCount]float64
	wheels   [parameter.WheelCount]vmath.Pose
}

func newVehicle(spec physics.VehicleSpec) *Vehicle {
	fwd := vmath.V3Normalize(spec.ForwardAxis)
	spec.ForwardAxis = fwd

	spawn := spec.Orientation
	if spawn.Len() == 0 {
		spawn = mgl64.QuatIdent()
	}

	var front, rear float64
	for i, w := range spec.Wheels {
		d := w.ConnectionPoint.Dot(fwd)
		if i == parameter.WheelFrontLeft || i == parameter.WheelFrontRight {
			front += d / 2
		} else {
			rear += d / 2
		}
	}
	wheelbase := math.Abs(front - rear)
	if wheelbase < parameter.ArcadeMinWheelbase {
		wheelbase = parameter.ArcadeMinWheelbase
	}

	w0 := spec.Wheels[parameter.WheelFrontLeft]
	v := &Vehicle{
		spec:       spec,
		position:   spec.Position,
		spawn:      spawn.Normalize(),
		wheelbase:  wheelbase,
		rideHeight: w0.SuspensionRestLength + w0.Radius - w0.ConnectionPoint.Y(),
		spinAxis:   vmath.V3Normalize(vmath.AxisY.Cross(fwd)),
	}
	v.position[1] = v.rideHeight
	for i := range v.wheels {
		v.UpdateWheelTransform(i)
	}
	return v
}

func (v *Vehicle) orientation() mgl64.Quat {
	return mgl64.QuatRotate(v.yaw, vmath.AxisY).Mul(v.spawn).Normalize()
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func (v *Vehicle) integrate(dt float64) {
	var drive, brake float64
	for i := range v.engine {
		drive += v.engine[i]
		brake += v.brake[i]
	}

	force := drive - sign(v.speed)*brake*parameter.ArcadeBrakeGain
	accel := force/v.spec.Mass -
		parameter.ArcadeDragCoeff*v.speed*math.Abs(v.speed) -
		parameter.ArcadeRollingCoeff*v.speed

	prev := v.speed
	v.speed += accel * dt

	// Resistance and brakes stop the vehicle but never reverse it
	if drive == 0 {
		if sign(v.speed) != sign(prev) || math.Abs(v.speed) < parameter.ArcadeStopSpeed {
			v.speed = 0
		}
	}

	steer := (v.steering[parameter.WheelFrontLeft] + v.steering[parameter.WheelFrontRight]) / 2
	v.yaw += v.speed * math.Tan(steer) / v.wheelbase * dt

	q := v.orientation()
	v.position = v.position.Add(q.Rotate(v.spec.ForwardAxis).Mul(v.speed * dt))
	v.position[1] = v.rideHeight

	for i := range v.spin {
		v.spin[i] += v.speed * dt / v.spec.Wheels[i].Radius
	}
}

func (v *Vehicle) confine(halfSize float64) {
	if halfSize <= 0 {
		return
	}
	hit := false
	for _, axis := range [...]int{0, 2} {
		if v.position[axis] > halfSize {
			v.position[axis] = halfSize
			hit = true
		} else if v.position[axis] < -halfSize {
			v.position[axis] = -halfSize
			hit = true
		}
	}
	if hit {
		v.speed = 0
	}
}

func (v *Vehicle) SetSteeringValue(angle float64, wheel int) { v.steering[wheel] = angle }
func (v *Vehicle) ApplyEngineForce(force float64, wheel int) { v.engine[wheel] = force }
func (v *Vehicle) SetBrake(force float64, wheel int)         { v.brake[wheel] = force }
func (v *Vehicle) WheelSteering(wheel int) float64           { return v.steering[wheel] }
func (v *Vehicle) WheelTransform(wheel int) vmath.Pose       { return v.wheels[wheel] }
func (v *Vehicle) WheelCount() int                           { return parameter.WheelCount }

// UpdateWheelTransform places the wheel at its connection point pushed down by rest length
func (v *Vehicle) UpdateWheelTransform(wheel int) {
	w := v.spec.Wheels[wheel]
	chassis := v.ChassisPose()
	local := w.ConnectionPoint.Add(w.DirectionLocal.Mul(w.SuspensionRestLength))
	q := chassis.Orientation.
		Mul(mgl64.QuatRotate(v.steering[wheel], vmath.AxisY)).
		Mul(mgl64.QuatRotate(v.spin[wheel], v.spinAxis))
	v.wheels[wheel] = vmath.Pose{
		Position:    chassis.LocalToWorld(local),
		Orientation: q.Normalize(),
	}
}

func (v *Vehicle) ChassisPose() vmath.Pose {
	return vmath.Pose{Position: v.position, Orientation: v.orientation()}
}

func (v *Vehicle) ChassisVelocity() mgl64.Vec3 {
	return v.orientation().Rotate(v.spec.ForwardAxis).Mul(v.speed)
}

func (v *Vehicle) VectorToWorldFrame(local mgl64.Vec3) mgl64.Vec3 {
	return v.orientation().Rotate(local)
}

// Speed is the signed longitudinal speed, forward-positive
func (v *Vehicle) Speed() float64 {
	return v.speed
}

// Spec returns the VehicleSpec the vehicle was created from
func (v *Vehicle) Spec() physics.VehicleSpec {
	return v.spec
}
