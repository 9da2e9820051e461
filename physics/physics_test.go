package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/vmath"
)

func TestSpecFromProfile(t *testing.T) {
	p := catalog.NewBuiltin().Lookup(catalog.BMWF82)
	spec := SpecFromProfile(p)

	if spec.ProfileID != catalog.BMWF82 || spec.Mass != p.Physics.Mass {
		t.Errorf("spec identity mismatch: %+v", spec)
	}
	if spec.Position.Y() != p.Physics.SpawnHeight {
		t.Errorf("spawn height = %v, want %v", spec.Position.Y(), p.Physics.SpawnHeight)
	}
	for i, w := range spec.Wheels {
		if w.ConnectionPoint != p.Physics.WheelConnections[i] {
			t.Errorf("wheel %d connection = %v, want %v", i, w.ConnectionPoint, p.Physics.WheelConnections[i])
		}
		if w.Radius != p.Physics.WheelRadius || w.FrictionSlip != p.Physics.FrictionSlip {
			t.Errorf("wheel %d tuning not copied", i)
		}
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSpecValidate(t *testing.T) {
	spec := SpecFromProfile(catalog.NewBuiltin().Default())
	spec.Mass = 0
	if err := spec.Validate(); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("zero mass err = %v", err)
	}
}

func TestForwardSpeedUsesWorldFrame(t *testing.T) {
	v := NewRecordingVehicle()
	// Yaw 90° left: local +X now points to world -Z
	v.Chassis.Orientation = mgl64.QuatRotate(math.Pi/2, vmath.AxisY)
	v.Velocity = mgl64.Vec3{0, 0, -3}

	if got := ForwardSpeed(v, vmath.AxisX); math.Abs(got-3) > 1e-9 {
		t.Errorf("ForwardSpeed(+X) = %v, want 3", got)
	}
	if got := ForwardSpeed(v, mgl64.Vec3{-1, 0, 0}); math.Abs(got+3) > 1e-9 {
		t.Errorf("ForwardSpeed(-X) = %v, want -3", got)
	}
}

func TestRecordingVehiclePublishesOnUpdate(t *testing.T) {
	v := NewRecordingVehicle()
	v.Wheels[2].Position = mgl64.Vec3{1, 2, 3}

	if v.WheelTransform(2).Position == v.Wheels[2].Position {
		t.Fatal("transform published before UpdateWheelTransform")
	}
	v.UpdateWheelTransform(2)
	if v.WheelTransform(2).Position != v.Wheels[2].Position {
		t.Error("transform not published after UpdateWheelTransform")
	}
	if v.UpdateCalls[2] != 1 {
		t.Errorf("UpdateCalls[2] = %d", v.UpdateCalls[2])
	}
}

func TestRecordingWorldLifecycle(t *testing.T) {
	w := &RecordingWorld{}
	spec := SpecFromProfile(catalog.NewBuiltin().Default())

	a, err := w.AddVehicle(spec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddVehicle(spec); err != nil {
		t.Fatal(err)
	}
	w.RemoveVehicle(a)
	if w.Removed != 1 || len(w.Vehicles) != 1 {
		t.Errorf("Removed=%d len=%d", w.Removed, len(w.Vehicles))
	}

	boom := errors.New("boom")
	w.FailNext = boom
	if _, err := w.AddVehicle(spec); !errors.Is(err, boom) {
		t.Errorf("FailNext not honored: %v", err)
	}
	if _, err := w.AddVehicle(spec); err != nil {
		t.Errorf("FailNext should clear after one call: %v", err)
	}
}
