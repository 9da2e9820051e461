package dynamics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics"
)

const frame = 1.0 / 60.0

// testProfile returns a built-in profile with overridden control tuning
func testProfile(traction catalog.Traction, maxForce, steerSpeed, maxSteer float64) catalog.Profile {
	p := catalog.NewBuiltin().Lookup(catalog.MercedesG63)
	p.Control.Traction = traction
	p.Control.MaxForce = maxForce
	p.Control.SteerSpeed = steerSpeed
	p.Control.MaxSteer = maxSteer
	return p
}

func bound(p catalog.Profile) (*Controller, *physics.RecordingVehicle) {
	v := physics.NewRecordingVehicle()
	c := NewController()
	c.Bind(p, v)
	return c, v
}

func TestUpdateWithoutVehiclePanics(t *testing.T) {
	c := NewController()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNoVehicle) {
			t.Fatalf("recover() = %v, want ErrNoVehicle", r)
		}
	}()
	c.Update(frame, Controls{Accelerate: true})
}

func TestAllTractionAccelerateFromRest(t *testing.T) {
	c, v := bound(testProfile(catalog.TractionAll, 400, 2, 0.5))

	for i := 0; i < 60; i++ {
		c.Update(frame, Controls{Accelerate: true})
		for w := 0; w < parameter.WheelCount; w++ {
			if v.EngineForce[w] != 400 {
				t.Fatalf("frame %d wheel %d engine force = %v, want 400", i, w, v.EngineForce[w])
			}
		}
		if c.State().Steering != 0 || v.Steering[0] != 0 || v.Steering[1] != 0 {
			t.Fatalf("frame %d steering = %v, want 0", i, c.State().Steering)
		}
		if c.State().Boost != 1 {
			t.Fatalf("frame %d boost = %v, want 1", i, c.State().Boost)
		}
	}
}

func TestRearTractionSteerClampsAtMax(t *testing.T) {
	c, v := bound(testProfile(catalog.TractionRear, 200, 2.0, 0.5))

	for i := 0; i < 60; i++ {
		c.Update(frame, Controls{SteerLeft: true})
		if s := c.State().Steering; s > 0.5 {
			t.Fatalf("frame %d steering %v exceeds max", i, s)
		}
	}
	if s := c.State().Steering; s != 0.5 {
		t.Errorf("steering after 1s = %v, want exactly 0.5", s)
	}
	if v.Steering[parameter.WheelFrontLeft] != 0.5 || v.Steering[parameter.WheelFrontRight] != 0.5 {
		t.Errorf("front wheels = %v, %v", v.Steering[0], v.Steering[1])
	}
	if v.Steering[parameter.WheelRearLeft] != 0 || v.Steering[parameter.WheelRearRight] != 0 {
		t.Error("rear wheels were steered")
	}
}

func TestSteerRightIsNegativeAndLeftWins(t *testing.T) {
	c, _ := bound(testProfile(catalog.TractionAll, 400, 2, 0.5))
	c.Update(frame, Controls{SteerRight: true})
	if c.State().Steering >= 0 {
		t.Errorf("steer right = %v, want negative", c.State().Steering)
	}
	if c.Output().SteerTarget != -0.5 {
		t.Errorf("target = %v", c.Output().SteerTarget)
	}

	c.Reset()
	c.Update(frame, Controls{SteerLeft: true, SteerRight: true})
	if c.Output().SteerTarget != 0.5 {
		t.Errorf("both held target = %v, want +max", c.Output().SteerTarget)
	}
}

func TestSteeringBoundedForRandomInput(t *testing.T) {
	c, v := bound(testProfile(catalog.TractionAll, 400, 3, 0.6))
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		v.Velocity = mgl64.Vec3{rng.Float64()*300 - 150, 0, 0}
		dt := rng.Float64() * 0.5 // includes steps far above the clamp
		c.Update(dt, Controls{
			SteerLeft:  rng.Intn(3) == 0,
			SteerRight: rng.Intn(3) == 0,
		})
		if s := math.Abs(c.State().Steering); s > 0.6 {
			t.Fatalf("step %d |steering| = %v > max", i, s)
		}
	}
}

func TestReleaseReturnsToExactZero(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, _ := bound(p)
	for i := 0; i < 60; i++ {
		c.Update(frame, Controls{SteerLeft: true})
	}

	// At rest the return speed is SteerReturn; pad by one frame for step quantisation
	frames := int(math.Ceil(p.Control.MaxSteer/p.Control.SteerReturn/frame)) + 1
	for i := 0; i < frames; i++ {
		c.Update(frame, Controls{})
	}
	if s := c.State().Steering; s != 0 {
		t.Errorf("steering after release = %v, want exact 0", s)
	}
}

func TestSpeedAdjustedSteerRates(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, v := bound(p)

	// speedFactor = 50/100 = 0.5 -> steer rate 2*(1-0.25) = 1.5 rad/s
	v.Velocity = mgl64.Vec3{50, 0, 0}
	c.Update(0.02, Controls{SteerLeft: true})
	if got, want := c.State().Steering, 1.5*0.02; math.Abs(got-want) > 1e-12 {
		t.Errorf("steering = %v, want %v", got, want)
	}

	// return rate 2*(1+0.25) = 2.5 rad/s
	c.Update(0.01, Controls{})
	if got, want := c.State().Steering, 1.5*0.02-2.5*0.01; math.Abs(got-want) > 1e-12 {
		t.Errorf("returned steering = %v, want %v", got, want)
	}
}

func TestDeltaClamped(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, _ := bound(p)
	c.Update(10, Controls{SteerLeft: true})
	if got, want := c.State().Steering, 2*parameter.MaxFrameStep; math.Abs(got-want) > 1e-12 {
		t.Errorf("steering after huge dt = %v, want %v", got, want)
	}

	c.Reset()
	c.Update(-1, Controls{SteerLeft: true})
	if c.State().Steering != 0 {
		t.Errorf("negative dt moved steering to %v", c.State().Steering)
	}
}

func TestReverseOnlyWhenNearStoppedBrakeWithoutAccelerate(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)

	tests := []struct {
		name        string
		speed       float64
		controls    Controls
		wantEngine  float64
		wantBrake   float64
		wantReverse bool
	}{
		{"brake at rest reverses", 0, Controls{Brake: true}, -400, 0, true},
		{"brake crawling backwards keeps reversing", -1.5, Controls{Brake: true}, -400, 0, true},
		{"brake moving forward brakes", 5, Controls{Brake: true}, 0, p.Control.BrakeForce, false},
		{"brake moving backwards fast brakes", -5, Controls{Brake: true}, 0, p.Control.BrakeForce, false},
		{"brake at threshold brakes", p.Control.ReverseThreshold, Controls{Brake: true}, 0, p.Control.BrakeForce, false},
		{"brake plus accelerate at rest", 0, Controls{Brake: true, Accelerate: true}, 400, p.Control.BrakeForce, false},
		{"accelerate only", 0, Controls{Accelerate: true}, 400, 0, false},
		{"coast", 3, Controls{}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, v := bound(p)
			v.Velocity = mgl64.Vec3{tt.speed, 0, 0}
			c.Update(frame, tt.controls)

			if got := v.EngineForce[0]; got != tt.wantEngine {
				t.Errorf("engine = %v, want %v", got, tt.wantEngine)
			}
			if got := v.Brake[0]; got != tt.wantBrake {
				t.Errorf("front brake = %v, want %v", got, tt.wantBrake)
			}
			if got := c.Output().Reversing; got != tt.wantReverse {
				t.Errorf("reversing = %v, want %v", got, tt.wantReverse)
			}
		})
	}
}

func TestReverseScaledByBoost(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, v := bound(p)
	c.Update(frame, Controls{Brake: true, Boost: true})
	if want := -400 * p.Control.MaxBoost; v.EngineForce[0] != want {
		t.Errorf("boosted reverse = %v, want %v", v.EngineForce[0], want)
	}
}

func TestBoostDecaysGeometricallyToFloor(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, v := bound(p)

	c.Update(frame, Controls{Accelerate: true, Boost: true})
	if c.State().Boost != p.Control.MaxBoost {
		t.Fatalf("held boost = %v, want %v", c.State().Boost, p.Control.MaxBoost)
	}
	if v.EngineForce[0] != 400*p.Control.MaxBoost {
		t.Errorf("boosted engine = %v", v.EngineForce[0])
	}

	prev := c.State().Boost
	for i := 0; i < 100; i++ {
		c.Update(frame, Controls{Accelerate: true})
		b := c.State().Boost
		if b < 1 {
			t.Fatalf("frame %d boost %v below floor", i, b)
		}
		want := math.Max(1, prev*parameter.BoostDecayRatio)
		if math.Abs(b-want) > 1e-12 {
			t.Fatalf("frame %d boost = %v, want %v", i, b, want)
		}
		prev = b
	}
	if prev != 1 {
		t.Errorf("boost after decay = %v, want 1", prev)
	}
}

func TestTractionRoutingAndBrakes(t *testing.T) {
	tests := []struct {
		traction catalog.Traction
		want     [parameter.WheelCount]float64
	}{
		{catalog.TractionRear, [4]float64{0, 0, 400, 400}},
		{catalog.TractionFront, [4]float64{400, 400, 0, 0}},
		{catalog.TractionAll, [4]float64{400, 400, 400, 400}},
	}
	for _, tt := range tests {
		t.Run(string(tt.traction), func(t *testing.T) {
			c, v := bound(testProfile(tt.traction, 400, 2, 0.5))
			c.Update(frame, Controls{Accelerate: true})
			if v.EngineForce != tt.want {
				t.Errorf("engine = %v, want %v", v.EngineForce, tt.want)
			}
		})
	}

	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, v := bound(p)
	v.Velocity = mgl64.Vec3{10, 0, 0}
	c.Update(frame, Controls{Brake: true, Handbrake: true})
	want := [4]float64{p.Control.BrakeForce, p.Control.BrakeForce, p.Control.HandbrakeForce, p.Control.HandbrakeForce}
	if v.Brake != want {
		t.Errorf("brake+handbrake = %v, want %v", v.Brake, want)
	}

	c.Update(frame, Controls{Handbrake: true})
	want = [4]float64{0, 0, p.Control.HandbrakeForce, p.Control.HandbrakeForce}
	if v.Brake != want {
		t.Errorf("handbrake only = %v, want %v", v.Brake, want)
	}
}

func TestSpeedUsesProfileForwardAxis(t *testing.T) {
	p := catalog.NewBuiltin().Lookup(catalog.Classic)
	c, v := bound(p)
	v.Velocity = mgl64.Vec3{-4, 0, 0}
	c.Update(frame, Controls{})
	if c.State().Speed != 4 {
		t.Errorf("classic speed = %v, want 4 (forward is -X)", c.State().Speed)
	}
}

func TestBindResetsState(t *testing.T) {
	p := testProfile(catalog.TractionAll, 400, 2, 0.5)
	c, v := bound(p)
	v.Velocity = mgl64.Vec3{8, 0, 0}
	for i := 0; i < 10; i++ {
		c.Update(frame, Controls{SteerLeft: true, Boost: true, Accelerate: true})
	}

	c.Bind(catalog.NewBuiltin().Lookup(catalog.BMWF82), physics.NewRecordingVehicle())
	if s := c.State(); s != NeutralState() {
		t.Errorf("state after rebind = %+v, want neutral", s)
	}
	if c.Output() != (Output{}) {
		t.Errorf("output after rebind = %+v", c.Output())
	}
}
