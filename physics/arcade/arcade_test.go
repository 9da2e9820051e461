package arcade

import (
	"math"
	"testing"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/vmath"
)

const dt = 1.0 / 60.0

func spawn(t *testing.T, w *World, id string) *Vehicle {
	t.Helper()
	pv, err := w.AddVehicle(physics.SpecFromProfile(catalog.NewBuiltin().Lookup(id)))
	if err != nil {
		t.Fatalf("AddVehicle(%s): %v", id, err)
	}
	return pv.(*Vehicle)
}

func drive(v *Vehicle, force float64) {
	for i := 0; i < v.WheelCount(); i++ {
		v.ApplyEngineForce(force, i)
	}
}

func TestForwardForceMovesAlongForwardAxis(t *testing.T) {
	tests := []struct {
		id   string
		sign float64 // expected sign of world X displacement
	}{
		{catalog.MercedesG63, 1},
		{catalog.Classic, -1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := NewWorld(0)
			v := spawn(t, w, tt.id)
			drive(v, 400)
			for i := 0; i < 60; i++ {
				w.Step(dt)
			}
			if v.Speed() <= 0 {
				t.Errorf("speed after 1s = %v, want > 0", v.Speed())
			}
			x := v.ChassisPose().Position.X()
			if x*tt.sign <= 0 {
				t.Errorf("x = %v, want sign %v", x, tt.sign)
			}
			fwd := physics.ForwardSpeed(v, v.Spec().ForwardAxis)
			if math.Abs(fwd-v.Speed()) > 1e-9 {
				t.Errorf("ForwardSpeed = %v, internal speed = %v", fwd, v.Speed())
			}
		})
	}
}

func TestBrakeStopsWithoutReversing(t *testing.T) {
	w := NewWorld(0)
	v := spawn(t, w, catalog.MercedesG63)
	drive(v, 400)
	for i := 0; i < 30; i++ {
		w.Step(dt)
	}
	drive(v, 0)
	for i := 0; i < v.WheelCount(); i++ {
		v.SetBrake(5, i)
	}
	for i := 0; i < 300; i++ {
		w.Step(dt)
		if v.Speed() < 0 {
			t.Fatalf("brake reversed the vehicle at step %d: %v", i, v.Speed())
		}
	}
	if v.Speed() != 0 {
		t.Errorf("speed after braking = %v, want 0", v.Speed())
	}
}

func TestReverseForce(t *testing.T) {
	w := NewWorld(0)
	v := spawn(t, w, catalog.MercedesG63)
	drive(v, -400)
	for i := 0; i < 30; i++ {
		w.Step(dt)
	}
	if v.Speed() >= 0 {
		t.Errorf("reverse speed = %v, want < 0", v.Speed())
	}
}

func TestPositiveSteeringTurnsLeft(t *testing.T) {
	w := NewWorld(0)
	v := spawn(t, w, catalog.MercedesG63)
	drive(v, 400)
	v.SetSteeringValue(0.4, 0)
	v.SetSteeringValue(0.4, 1)
	for i := 0; i < 60; i++ {
		w.Step(dt)
	}
	// Left of a +X forward chassis is -Z
	if z := v.ChassisPose().Position.Z(); z >= 0 {
		t.Errorf("z = %v after left turn, want < 0", z)
	}
}

func TestGroundBoundsStopVehicle(t *testing.T) {
	w := NewWorld(1)
	v := spawn(t, w, catalog.MercedesG63)
	drive(v, 400)
	for i := 0; i < 120; i++ {
		w.Step(dt)
	}
	if x := v.ChassisPose().Position.X(); x > 1 {
		t.Errorf("x = %v escaped bounds", x)
	}
}

func TestWheelTransformsFollowChassis(t *testing.T) {
	w := NewWorld(0)
	v := spawn(t, w, catalog.MercedesG63)
	spec := v.Spec()

	for i := 0; i < v.WheelCount(); i++ {
		v.UpdateWheelTransform(i)
		got := v.WheelTransform(i).Position
		want := v.ChassisPose().LocalToWorld(spec.Wheels[i].ConnectionPoint.
			Add(spec.Wheels[i].DirectionLocal.Mul(spec.Wheels[i].SuspensionRestLength)))
		if !vmath.V3Near(got, want, 1e-9) {
			t.Errorf("wheel %d at %v, want %v", i, got, want)
		}
	}

	// Wheel bottoms rest on the ground plane
	p := v.WheelTransform(0).Position
	if math.Abs(p.Y()-spec.Wheels[0].Radius) > 1e-9 {
		t.Errorf("wheel centre height = %v, want radius %v", p.Y(), spec.Wheels[0].Radius)
	}
}

func TestRemoveVehicle(t *testing.T) {
	w := NewWorld(0)
	a := spawn(t, w, catalog.MercedesG63)
	spawn(t, w, catalog.BMWF82)
	w.RemoveVehicle(a)
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
	w.RemoveVehicle(a)
	if w.Len() != 1 {
		t.Errorf("removing twice changed Len() to %d", w.Len())
	}
}
