// Package player owns the driven vehicle: its profile, physics handle,
// dynamics controller, pose synchronizer and render nodes.
package player

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/asset"
	"github.com/lixenwraith/vi-drive/camera"
	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/dynamics"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/pose"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Player is the active vehicle
// All methods run on the frame loop goroutine
type Player struct {
	catalog  *catalog.Catalog
	world    physics.World
	pipeline *asset.Pipeline
	log      zerolog.Logger

	profile  catalog.Profile
	vehicle  physics.Vehicle
	ctrl     *dynamics.Controller
	sync     *pose.Synchronizer
	visuals  asset.Visuals
	controls dynamics.Controls
	loadGen  uint64
}

// New creates a player driving the catalog default profile
func New(cat *catalog.Catalog, world physics.World, pipeline *asset.Pipeline, log zerolog.Logger) (*Player, error) {
	p := &Player{
		catalog:  cat,
		world:    world,
		pipeline: pipeline,
		log:      log,
		ctrl:     dynamics.NewController(),
	}
	def := cat.Default()
	if err := p.spawn(def); err != nil {
		return nil, err
	}
	return p, nil
}

// ChangeVehicle swaps to profile id and reports whether it succeeded
// An unknown id or a substrate failure leaves the current vehicle untouched
// The new vehicle drives immediately on placeholder geometry while models load
func (p *Player) ChangeVehicle(id string) bool {
	prof, err := p.catalog.Resolve(id)
	if err != nil {
		p.log.Warn().Err(err).Str("profile", id).Msg("vehicle change rejected")
		return false
	}
	if err := p.spawn(prof); err != nil {
		p.log.Error().Err(err).Str("profile", id).Msg("vehicle change failed")
		return false
	}
	p.log.Info().Str("profile", id).Uint64("generation", p.loadGen).Msg("vehicle changed")
	return true
}

func (p *Player) spawn(prof catalog.Profile) error {
	v, err := p.world.AddVehicle(physics.SpecFromProfile(prof))
	if err != nil {
		return err
	}
	if p.vehicle != nil {
		p.world.RemoveVehicle(p.vehicle)
	}

	p.profile = prof
	p.vehicle = v
	p.ctrl.Bind(prof, v)
	if p.sync == nil {
		p.sync = pose.NewSynchronizer(prof)
	} else {
		p.sync.SetProfile(prof)
	}
	p.visuals = asset.Placeholder(prof)
	p.AfterStep()

	if p.pipeline != nil {
		p.loadGen = p.pipeline.Begin(prof)
	}
	return nil
}

// NextVehicle cycles to the profile after the current one in catalog order
func (p *Player) NextVehicle() bool {
	ids := p.catalog.IDs()
	for i, id := range ids {
		if id == p.profile.ID {
			return p.ChangeVehicle(ids[(i+1)%len(ids)])
		}
	}
	return p.ChangeVehicle(p.catalog.DefaultID())
}

// SetControls sets the driver intent used by the following Update calls
func (p *Player) SetControls(c dynamics.Controls) {
	p.controls = c
}

// Update applies finished model loads and runs the dynamics controller
func (p *Player) Update(dt float64) {
	if p.pipeline != nil {
		p.pipeline.Drain(p.applyLoad)
	}
	p.ctrl.Update(dt, p.controls)
}

func (p *Player) applyLoad(r asset.Result) {
	if r.ProfileID != p.profile.ID || r.Generation != p.loadGen {
		return
	}
	p.visuals.Apply(r)
	p.AfterStep()
	p.log.Debug().Str("profile", r.ProfileID).Msg("vehicle models applied")
}

// AfterStep copies the stepped physics poses onto the render nodes
func (p *Player) AfterStep() {
	body := p.visuals.Body
	switch {
	case body == nil:
	case body.Placeholder:
		c := p.vehicle.ChassisPose()
		body.SetPosition(c.Position)
		body.SetOrientation(c.Orientation)
	default:
		p.sync.SyncChassis(p.vehicle, body)
	}
	if err := p.sync.SyncWheels(p.vehicle, p.visuals.WheelNodes()); err != nil {
		p.log.Error().Err(err).Msg("wheel sync failed")
	}
}

// CurrentSpeed is the forward speed converted for display by the profile
func (p *Player) CurrentSpeed() float64 {
	return p.profile.Display.Convert(p.ctrl.State().Speed)
}

// SpeedUnit is the display unit of CurrentSpeed
func (p *Player) SpeedUnit() string {
	return p.profile.Display.Unit
}

// RawSpeed is the forward-positive speed in m/s
func (p *Player) RawSpeed() float64 {
	return p.ctrl.State().Speed
}

// WheelAngle is the front-left steering angle in degrees
func (p *Player) WheelAngle() float64 {
	return vmath.RadToDeg(p.vehicle.WheelSteering(parameter.WheelFrontLeft))
}

func (p *Player) Position() mgl64.Vec3 {
	return p.vehicle.ChassisPose().Position
}

func (p *Player) Orientation() mgl64.Quat {
	return p.vehicle.ChassisPose().Orientation
}

// Rotation is the chassis orientation as XYZ Euler angles in radians
func (p *Player) Rotation() vmath.Euler {
	return vmath.EulerXYZ(p.Orientation())
}

// MovementDirection is the world-space forward axis of the chassis
func (p *Player) MovementDirection() mgl64.Vec3 {
	return vmath.V3Normalize(p.vehicle.VectorToWorldFrame(p.profile.Physics.ForwardAxis))
}

// Subject is the camera view of the vehicle this frame
func (p *Player) Subject() camera.Subject {
	return camera.Subject{
		Position: p.Position(),
		Heading:  p.MovementDirection(),
		Speed:    p.RawSpeed(),
	}
}

func (p *Player) ProfileID() string           { return p.profile.ID }
func (p *Player) Profile() catalog.Profile    { return p.profile }
func (p *Player) State() dynamics.State       { return p.ctrl.State() }
func (p *Player) Output() dynamics.Output     { return p.ctrl.Output() }
func (p *Player) Controls() dynamics.Controls { return p.controls }
func (p *Player) Vehicle() physics.Vehicle    { return p.vehicle }

// Visuals returns the current render nodes; the placeholder until models load
func (p *Player) Visuals() asset.Visuals { return p.visuals }

// LoadGeneration is the generation of the most recent model load request
func (p *Player) LoadGeneration() uint64 { return p.loadGen }
