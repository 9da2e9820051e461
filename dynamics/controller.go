// Package dynamics turns per-frame driver controls into steering, engine and brake
// commands on a physics vehicle.
//
// The controller owns the only mutable per-vehicle driving state (steering angle,
// forward speed, boost multiplier). Profiles are read, never written.
package dynamics

import (
	"errors"
	"math"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/vmath"
)

// ErrNoVehicle is the panic value when Update runs without a bound physics vehicle
var ErrNoVehicle = errors.New("dynamics: update without a bound physics vehicle")

// Controls is one frame of driver intent
type Controls struct {
	SteerLeft  bool
	SteerRight bool
	Accelerate bool
	Brake      bool
	Handbrake  bool
	Boost      bool
}

// State is the per-vehicle runtime state
type State struct {
	// Steering is the front wheel angle in radians, positive left, within ±MaxSteer
	Steering float64
	// Speed is the chassis velocity projected on the forward axis, forward-positive (m/s)
	Speed float64
	// Boost is the engine force multiplier, never below 1
	Boost float64
}

// NeutralState is the state of a freshly bound vehicle
func NeutralState() State {
	return State{Boost: parameter.BoostFloor}
}

// Output is the command set written to the vehicle on the last Update
type Output struct {
	SteerTarget float64
	EngineForce [parameter.WheelCount]float64
	Brake       [parameter.WheelCount]float64
	Reversing   bool
}

// Controller drives one physics vehicle from one profile
type Controller struct {
	profile catalog.Profile
	vehicle physics.Vehicle
	drive   []int
	state   State
	out     Output
}

// NewController creates an unbound controller in neutral state
func NewController() *Controller {
	return &Controller{state: NeutralState()}
}

// Bind attaches a profile and its physics vehicle, resetting state to neutral
func (c *Controller) Bind(p catalog.Profile, v physics.Vehicle) {
	c.profile = p
	c.vehicle = v
	c.drive = p.Control.Traction.DrivenWheels()
	c.Reset()
}

// Unbind detaches the vehicle; Update panics until the next Bind
func (c *Controller) Unbind() {
	c.vehicle = nil
	c.Reset()
}

// Reset returns runtime state and output to neutral without touching the vehicle
func (c *Controller) Reset() {
	c.state = NeutralState()
	c.out = Output{}
}

// Bound reports whether a physics vehicle is attached
func (c *Controller) Bound() bool {
	return c.vehicle != nil
}

func (c *Controller) Profile() catalog.Profile { return c.profile }
func (c *Controller) State() State             { return c.state }
func (c *Controller) Output() Output           { return c.out }

// ClampStep bounds a frame delta to [0, MaxFrameStep]; NaN becomes 0
func ClampStep(dt float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	if dt > parameter.MaxFrameStep {
		return parameter.MaxFrameStep
	}
	return dt
}

// Update advances steering and drivetrain by dt and writes the result to the vehicle
func (c *Controller) Update(dt float64, in Controls) {
	if c.vehicle == nil {
		panic(ErrNoVehicle)
	}
	dt = ClampStep(dt)
	ctl := c.profile.Control

	c.state.Speed = physics.ForwardSpeed(c.vehicle, c.profile.Physics.ForwardAxis)

	c.updateSteering(dt, in, ctl)
	engine, brake, handbrake := c.drivetrain(in, ctl)
	c.updateBoost(in, ctl)

	engine *= c.state.Boost
	c.apply(engine, brake, handbrake)
}

func (c *Controller) updateSteering(dt float64, in Controls, ctl catalog.Control) {
	target := 0.0
	switch {
	case in.SteerLeft:
		target = ctl.MaxSteer
	case in.SteerRight:
		target = -ctl.MaxSteer
	}
	c.out.SteerTarget = target

	speedFactor := vmath.Clamp01(math.Abs(c.state.Speed) / parameter.SteerSpeedFactorDivisor)
	steerSpeed := ctl.SteerSpeed * (1 - parameter.SteerSpeedDamping*speedFactor)
	returnSpeed := ctl.SteerReturn * (1 + parameter.SteerReturnBoost*speedFactor)

	s := c.state.Steering
	if target != 0 {
		s = vmath.MoveToward(s, target, steerSpeed*dt)
	} else {
		s = vmath.DecayToZero(s, returnSpeed*dt)
	}
	c.state.Steering = vmath.Clamp(s, -ctl.MaxSteer, ctl.MaxSteer)
}

func (c *Controller) drivetrain(in Controls, ctl catalog.Control) (engine, brake, handbrake float64) {
	c.out.Reversing = false

	if in.Accelerate {
		engine = ctl.MaxForce
	}
	if in.Brake {
		nearStopped := math.Abs(c.state.Speed) < ctl.ReverseThreshold
		if nearStopped && !in.Accelerate {
			engine = -ctl.MaxForce
			c.out.Reversing = true
		} else {
			brake = ctl.BrakeForce
		}
	}
	if in.Handbrake {
		handbrake = ctl.HandbrakeForce
	}
	return engine, brake, handbrake
}

func (c *Controller) updateBoost(in Controls, ctl catalog.Control) {
	if in.Boost {
		c.state.Boost = ctl.MaxBoost
		return
	}
	c.state.Boost = math.Max(parameter.BoostFloor, c.state.Boost*parameter.BoostDecayRatio)
}

func (c *Controller) apply(engine, brake, handbrake float64) {
	v := c.vehicle

	v.SetSteeringValue(c.state.Steering, parameter.WheelFrontLeft)
	v.SetSteeringValue(c.state.Steering, parameter.WheelFrontRight)

	c.out.EngineForce = [parameter.WheelCount]float64{}
	for _, w := range c.drive {
		c.out.EngineForce[w] = engine
	}
	for w := 0; w < parameter.WheelCount; w++ {
		v.ApplyEngineForce(c.out.EngineForce[w], w)
	}

	rear := brake
	if handbrake != 0 {
		rear = handbrake
	}
	c.out.Brake = [parameter.WheelCount]float64{brake, brake, rear, rear}
	for w := 0; w < parameter.WheelCount; w++ {
		v.SetBrake(c.out.Brake[w], w)
	}
}
