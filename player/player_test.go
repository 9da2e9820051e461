package player

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/asset"
	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/dynamics"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/scene"
)

func newPlayer(t *testing.T, loader asset.Loader) (*Player, *physics.RecordingWorld) {
	t.Helper()
	w := &physics.RecordingWorld{}
	var pl *asset.Pipeline
	if loader != nil {
		pl = asset.NewPipeline(loader, zerolog.Nop())
		t.Cleanup(pl.Close)
	}
	p, err := New(catalog.NewBuiltin(), w, pl, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return p, w
}

func TestNewSpawnsDefault(t *testing.T) {
	p, w := newPlayer(t, nil)
	if p.ProfileID() != catalog.DefaultID {
		t.Errorf("profile = %s", p.ProfileID())
	}
	if len(w.Vehicles) != 1 || len(w.Specs) != 1 {
		t.Fatalf("vehicles = %d", len(w.Vehicles))
	}
	if got := w.Specs[0].Position.Y(); got != p.Profile().Physics.SpawnHeight {
		t.Errorf("spawn y = %v", got)
	}
	v := p.Visuals()
	if !v.IsPlaceholder() {
		t.Error("fresh vehicle not on placeholder geometry")
	}
}

func TestChangeVehicleUnknownKeepsState(t *testing.T) {
	p, w := newPlayer(t, nil)
	rv := w.Last()
	rv.Velocity = mgl64.Vec3{5, 0, 0}
	p.SetControls(dynamics.Controls{SteerLeft: true, Accelerate: true})
	for i := 0; i < 10; i++ {
		p.Update(1.0 / 60)
	}
	before := p.State()
	if before.Steering == 0 || before.Speed == 0 {
		t.Fatalf("precondition: state = %+v", before)
	}

	if p.ChangeVehicle("tesla_cybertruck") {
		t.Fatal("unknown profile accepted")
	}
	if p.State() != before || p.ProfileID() != catalog.DefaultID {
		t.Errorf("state changed: %+v", p.State())
	}
	if p.Vehicle() != physics.Vehicle(rv) || w.Removed != 0 {
		t.Error("physics vehicle replaced")
	}
}

func TestChangeVehicleResetsState(t *testing.T) {
	p, w := newPlayer(t, nil)
	old := w.Last()
	old.Velocity = mgl64.Vec3{5, 0, 0}
	p.SetControls(dynamics.Controls{SteerRight: true, Accelerate: true})
	p.Update(1.0 / 60)

	if !p.ChangeVehicle(catalog.BMWF82) {
		t.Fatal("ChangeVehicle failed")
	}
	if p.ProfileID() != catalog.BMWF82 {
		t.Errorf("profile = %s", p.ProfileID())
	}
	if s := p.State(); s.Steering != 0 || s.Speed != 0 || s.Boost != parameter.BoostFloor {
		t.Errorf("state not neutral: %+v", s)
	}
	if w.Removed != 1 || len(w.Vehicles) != 1 || p.Vehicle() == physics.Vehicle(old) {
		t.Errorf("old vehicle not replaced: removed=%d vehicles=%d", w.Removed, len(w.Vehicles))
	}

	v := p.Visuals()
	if n := len(v.WheelNodes()); n != p.Profile().WheelCount() || n != parameter.WheelCount {
		t.Errorf("wheel nodes = %d", n)
	}
	for i, rv := range w.Last().UpdateCalls {
		if rv == 0 {
			t.Errorf("wheel %d never synchronized", i)
		}
	}
}

func TestChangeVehicleSubstrateFailure(t *testing.T) {
	p, w := newPlayer(t, nil)
	w.FailNext = errors.New("solver full")
	if p.ChangeVehicle(catalog.Classic) {
		t.Fatal("change reported success")
	}
	if p.ProfileID() != catalog.DefaultID || len(w.Vehicles) != 1 {
		t.Error("failed change altered the active vehicle")
	}
}

func TestGetters(t *testing.T) {
	p, w := newPlayer(t, nil)
	if !p.ChangeVehicle(catalog.Classic) {
		t.Fatal("ChangeVehicle failed")
	}
	rv := w.Last()
	// Classic drives toward local -X; moving along -X is forward
	rv.Velocity = mgl64.Vec3{-3, 0, 0}
	p.SetControls(dynamics.Controls{SteerLeft: true})
	p.Update(0.1)

	if math.Abs(p.RawSpeed()-3) > 1e-9 || math.Abs(p.CurrentSpeed()-3) > 1e-9 {
		t.Errorf("speed raw=%v display=%v", p.RawSpeed(), p.CurrentSpeed())
	}
	if p.SpeedUnit() != "m/s" {
		t.Errorf("unit = %q", p.SpeedUnit())
	}
	wantDeg := rv.Steering[parameter.WheelFrontLeft] * 180 / math.Pi
	if wantDeg <= 0 || math.Abs(p.WheelAngle()-wantDeg) > 1e-9 {
		t.Errorf("wheel angle = %v, want %v", p.WheelAngle(), wantDeg)
	}
	if d := p.MovementDirection(); d.Sub(mgl64.Vec3{-1, 0, 0}).Len() > 1e-9 {
		t.Errorf("direction = %v", d)
	}
	s := p.Subject()
	if s.Speed != p.RawSpeed() || s.Position != p.Position() {
		t.Errorf("subject = %+v", s)
	}
	if !p.Rotation().IsZero() {
		t.Errorf("rotation = %+v", p.Rotation())
	}
}

func TestCurrentSpeedKmh(t *testing.T) {
	p, w := newPlayer(t, nil)
	w.Last().Velocity = mgl64.Vec3{10, 0, 0}
	p.Update(1.0 / 60)
	if math.Abs(p.CurrentSpeed()-36) > 1e-9 {
		t.Errorf("display speed = %v, want 36", p.CurrentSpeed())
	}
}

func TestNextVehicleCycles(t *testing.T) {
	p, _ := newPlayer(t, nil)
	ids := catalog.NewBuiltin().IDs()
	for i := 1; i <= len(ids); i++ {
		if !p.NextVehicle() {
			t.Fatal("NextVehicle failed")
		}
		if want := ids[i%len(ids)]; p.ProfileID() != want {
			t.Errorf("step %d profile = %s, want %s", i, p.ProfileID(), want)
		}
	}
}

func TestStaleLoadNotApplied(t *testing.T) {
	release := make(chan struct{})
	loader := asset.LoaderFunc(func(ctx context.Context, m catalog.Model) (*scene.Transform, error) {
		<-release
		n := scene.NewTransform(m.Path, scene.ShapeModel)
		n.Source = m.Path
		return n, nil
	})
	p, _ := newPlayer(t, loader)
	first := p.LoadGeneration()

	if !p.ChangeVehicle(catalog.Classic) {
		t.Fatal("ChangeVehicle failed")
	}
	if p.LoadGeneration() == first {
		t.Fatal("generation not bumped")
	}
	close(release)

	classic := p.Profile()
	deadline := time.Now().Add(2 * time.Second)
	for {
		p.Update(1.0 / 60)
		v := p.Visuals()
		if !v.Body.Placeholder {
			if v.Body.Source != classic.Visual.Body.Path {
				t.Fatalf("applied body from %q", v.Body.Source)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("classic body never applied")
		}
		time.Sleep(time.Millisecond)
	}

	// Any late result of the first generation is dropped, not applied
	time.Sleep(10 * time.Millisecond)
	p.Update(1.0 / 60)
	if v := p.Visuals(); v.Body.Source != classic.Visual.Body.Path {
		t.Errorf("stale body applied: %q", v.Body.Source)
	}
}
