package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/asset"
	"github.com/lixenwraith/vi-drive/audio"
	"github.com/lixenwraith/vi-drive/camera"
	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/engine"
	"github.com/lixenwraith/vi-drive/input"
	"github.com/lixenwraith/vi-drive/metrics"
	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/physics/arcade"
	"github.com/lixenwraith/vi-drive/player"
	"github.com/lixenwraith/vi-drive/render"
	"github.com/lixenwraith/vi-drive/status"
	"github.com/lixenwraith/vi-drive/telemetry"
)

// Static boxes on the ground, 2 m cubes
var obstacles = []render.Obstacle{
	{Position: mgl64.Vec3{5, 1, 5}, HalfExtents: mgl64.Vec3{1, 1, 1}},
	{Position: mgl64.Vec3{-5, 1, 8}, HalfExtents: mgl64.Vec3{1, 1, 1}},
	{Position: mgl64.Vec3{8, 1, -5}, HalfExtents: mgl64.Vec3{1, 1, 1}},
}

// sandbox is the single-vehicle driving scene
// Everything except the event poller and services runs on the frame loop goroutine
type sandbox struct {
	cfg    config.Config
	log    zerolog.Logger
	screen tcell.Screen
	clock  engine.TimeProvider

	catalog  *catalog.Catalog
	world    *arcade.World
	pipeline *asset.Pipeline
	player   *player.Player
	camera   *camera.Controller
	input    *input.Manager
	source   *input.TerminalSource

	loop     *engine.Loop
	hub      *engine.Hub
	sound    *audio.SoundManager
	recorder *telemetry.Recorder
	board    *status.Board

	metrics     *metrics.Provider
	metricsFile *os.File

	view    *render.Orchestrator
	overlay *render.OverlayRenderer
	legend  string

	events   chan tcell.Event
	camInput camera.Input
	camPose  camera.Pose
	quit     bool
}

func newSandbox(ctx context.Context, cfg config.Config, screen tcell.Screen, clock engine.TimeProvider, log zerolog.Logger) (*sandbox, error) {
	s := &sandbox{
		cfg:    cfg,
		log:    log,
		screen: screen,
		clock:  clock,
		board:  status.NewBoard(),
		events: make(chan tcell.Event, 256),
	}

	s.catalog = catalog.NewBuiltin()
	if cfg.ProfilesFile != "" {
		ids, err := s.catalog.LoadFile(cfg.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("loading profiles: %w", err)
		}
		log.Info().Strs("profiles", ids).Str("file", cfg.ProfilesFile).Msg("profiles loaded")
	}

	s.world = arcade.NewWorld(parameter.GroundHalfSize)
	s.pipeline = asset.NewPipeline(asset.NewFileLoader(cfg.AssetsDir), log)

	p, err := player.New(s.catalog, s.world, s.pipeline, log)
	if err != nil {
		s.pipeline.Close()
		return nil, fmt.Errorf("spawning vehicle: %w", err)
	}
	s.player = p
	if cfg.Vehicle != "" && cfg.Vehicle != s.catalog.DefaultID() {
		p.ChangeVehicle(cfg.Vehicle)
	}

	bindings := input.DefaultBindings()
	if err := bindings.Override(cfg.Bindings); err != nil {
		s.pipeline.Close()
		return nil, err
	}
	s.input = input.NewManager(bindings, cfg.KeyHoldWindow)
	s.source = input.NewTerminalSource(s.input)
	s.legend = legend(bindings)

	camCfg := camera.DefaultConfig()
	camCfg.Mode = camera.ParseMode(cfg.Camera.Mode)
	camCfg.Damping = cfg.Camera.Damping
	if cfg.Camera.DampingFactor > 0 {
		camCfg.DampingFactor = cfg.Camera.DampingFactor
	}
	s.camera = camera.NewController(camCfg, p.Subject())
	s.camera.ApplyPreset(camera.PresetByName(cfg.Camera.Preset))
	s.camPose = s.camera.Pose()

	if err := s.setupMetrics(); err != nil {
		s.pipeline.Close()
		return nil, err
	}
	s.loop, err = engine.NewLoop(clock, cfg.TargetFPS, s.world,
		engine.WithMeter(s.metrics.Meter(engine.InstrumentationName)))
	if err != nil {
		s.stopMetrics()
		s.pipeline.Close()
		return nil, err
	}
	s.sound = audio.NewSoundManager(p, cfg.Audio.Enabled, cfg.Audio.Volume, log)

	// Input first so the vehicle sees this frame's controls
	s.loop.Add(s)
	s.loop.Add(p)
	s.loop.Add(s.sound)

	s.view = render.NewOrchestrator(screen)
	s.overlay = &render.OverlayRenderer{Visible: cfg.DevOverlay}
	s.view.Register(render.GroundRenderer{HalfSize: parameter.GroundHalfSize}, render.PriorityGround)
	s.view.Register(render.ObstacleRenderer{Obstacles: obstacles}, render.PriorityObstacle)
	s.view.Register(render.VehicleRenderer{}, render.PriorityVehicle)
	s.view.Register(render.HUDRenderer{}, render.PriorityHUD)
	s.view.Register(s.overlay, render.PriorityOverlay)

	s.hub = engine.NewHub()
	if err := s.hub.Register(s.sound); err != nil {
		s.stopMetrics()
		s.pipeline.Close()
		return nil, err
	}
	if err := s.setupTelemetry(ctx); err != nil {
		s.stopMetrics()
		s.pipeline.Close()
		return nil, err
	}
	if err := s.hub.StartAll(ctx); err != nil {
		s.stopMetrics()
		s.pipeline.Close()
		return nil, err
	}
	return s, nil
}

func legend(b *input.Bindings) string {
	parts := []string{
		b.Label(input.ActionAccelerate) + "/" + b.Label(input.ActionBrake) + " drive",
		b.Label(input.ActionSteerLeft) + "/" + b.Label(input.ActionSteerRight) + " steer",
		b.Label(input.ActionHandbrake) + " handbrake",
		b.Label(input.ActionBoost) + " boost",
		b.Label(input.ActionNextVehicle) + " vehicle",
		b.Label(input.ActionCameraMode) + " camera",
		b.Label(input.ActionDevOverlay) + " overlay",
		b.Label(input.ActionQuit) + " quit",
	}
	return strings.Join(parts, "  ")
}

// pollEvents forwards terminal events until the screen is finalized
func (s *sandbox) pollEvents() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		s.events <- ev
	}
}

// handleEvent applies one terminal event; resizes go to the view, the rest to input
func (s *sandbox) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		s.view.Resize(w, h)
	default:
		s.source.HandleEvent(ev)
	}
}

// Update drains pending events and turns the input snapshot into this frame's commands
func (s *sandbox) Update(float64) {
	for drained := false; !drained; {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		default:
			drained = true
		}
	}

	snap := s.input.Snapshot(s.clock.Now())
	s.player.SetControls(snap.Controls)
	s.camInput = snap.Camera

	if snap.Quit {
		s.quit = true
	}
	if snap.DevOverlay {
		s.overlay.Toggle()
	}
	if snap.NextVehicle && s.player.NextVehicle() {
		s.camera.Reset(s.player.Subject())
	}
	if snap.CameraMode {
		next := camera.ModeChase
		if s.camera.Config().Mode == camera.ModeChase {
			next = camera.ModeTranslate
		}
		s.camera.SetMode(next)
	}
	if snap.Preset != "" {
		s.camera.ApplyPreset(camera.PresetByName(snap.Preset))
	}
}

// frame runs after each admitted frame: camera follow, telemetry, dev overlay and drawing
func (s *sandbox) frame(dt float64) bool {
	s.camPose = s.camera.Update(dt, s.player.Subject(), s.camInput)

	now := s.clock.Now()
	if s.recorder != nil {
		s.recorder.Sample(s.player, now)
	}
	s.updateBoard()
	s.draw(now)
	return !s.quit
}

func (s *sandbox) updateBoard() {
	b := s.board
	b.Label("vehicle").Set(s.player.ProfileID())
	b.Label("camera").Set(s.camera.Config().Mode.String())
	b.Gauge("fps").Set(s.loop.FPS())
	b.Gauge("speed").Set(s.player.RawSpeed())
	b.Gauge("boost").Set(s.player.State().Boost)
	b.Counter("frames").Store(int64(s.loop.Frames()))
	b.Counter("assets.stale").Store(s.pipeline.Stale())
	b.Counter("assets.failed").Store(s.pipeline.Failed())
	if s.recorder != nil {
		st := s.recorder.Stats()
		b.Counter("telemetry.written").Store(st.Written)
		b.Counter("telemetry.dropped").Store(st.Dropped)
	}
}

func (s *sandbox) draw(now time.Time) {
	w, h := s.view.Size()
	ctx := render.NewContext(w, h, s.camPose.LookAt)

	p := s.player
	prof := p.Profile()
	veh := p.Vehicle()
	wheels := make([]mgl64.Vec3, veh.WheelCount())
	for i := range wheels {
		wheels[i] = veh.WheelTransform(i).Position
	}
	visuals := p.Visuals()
	ctx.Vehicle = render.VehicleView{
		Pose:        veh.ChassisPose(),
		HalfExtents: prof.Physics.HalfExtents,
		Forward:     prof.Physics.ForwardAxis,
		Wheels:      wheels,
		Placeholder: visuals.IsPlaceholder(),
	}

	ctx.Readout = telemetry.NewReadout(telemetry.Capture(p, now)).Lines(p.SpeedUnit())
	ctx.Readout = append(ctx.Readout, fmt.Sprintf("Vehicle: %s  Camera: %s", prof.Name, s.camera.Config().Mode))
	ctx.Legend = s.legend
	if s.overlay.IsVisible() {
		ctx.Status = s.board.Lines()
	}
	s.view.RenderFrame(ctx)
}

// run drives the frame loop until quit or ctx is done
func (s *sandbox) run(ctx context.Context) error {
	return s.loop.Run(ctx, s.frame)
}

// close stops services and pending loads
func (s *sandbox) close() error {
	err := s.hub.StopAll()
	s.pipeline.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return errors.Join(err, s.stopMetrics())
}
