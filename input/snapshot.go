package input

import (
	"time"

	"github.com/lixenwraith/vi-drive/camera"
	"github.com/lixenwraith/vi-drive/dynamics"
)

// Snapshot is the input of one frame
type Snapshot struct {
	Controls dynamics.Controls
	Camera   camera.Input

	DevOverlay  bool
	NextVehicle bool
	CameraMode  bool
	// Preset is a camera preset name, empty when none was selected
	Preset string
	Quit   bool
}

// Manager owns key and pointer state and produces snapshots
// Sources write from their event goroutine; the frame loop calls Snapshot
type Manager struct {
	bindings *Bindings
	keys     *KeyState
	pointer  *Pointer
}

// NewManager creates a manager; window is the key hold window for press-only sources
func NewManager(b *Bindings, window time.Duration) *Manager {
	if b == nil {
		b = DefaultBindings()
	}
	return &Manager{
		bindings: b,
		keys:     NewKeyState(window),
		pointer:  &Pointer{},
	}
}

func (m *Manager) Bindings() *Bindings { return m.bindings }
func (m *Manager) Keys() *KeyState     { return m.keys }
func (m *Manager) Pointer() *Pointer   { return m.pointer }

// Held reports whether any key bound to a is held at now
func (m *Manager) Held(a Action, now time.Time) bool {
	for _, k := range m.bindings.Keys(a) {
		if m.keys.IsPressed(k, now) {
			return true
		}
	}
	return false
}

func (m *Manager) presses(a Action) int {
	n := 0
	for _, k := range m.bindings.Keys(a) {
		n += m.keys.TakePresses(k)
	}
	return n
}

// Snapshot samples held actions, consumes edge presses and resets the pointer delta
func (m *Manager) Snapshot(now time.Time) Snapshot {
	var s Snapshot
	s.Controls = dynamics.Controls{
		SteerLeft:  m.Held(ActionSteerLeft, now),
		SteerRight: m.Held(ActionSteerRight, now),
		Accelerate: m.Held(ActionAccelerate, now),
		Brake:      m.Held(ActionBrake, now),
		Handbrake:  m.Held(ActionHandbrake, now),
		Boost:      m.Held(ActionBoost, now),
	}

	s.DevOverlay = m.presses(ActionDevOverlay) > 0
	s.NextVehicle = m.presses(ActionNextVehicle) > 0
	s.CameraMode = m.presses(ActionCameraMode) > 0
	s.Quit = m.presses(ActionQuit) > 0

	switch {
	case m.presses(ActionCameraNear) > 0:
		s.Preset = camera.PresetNear.Name
	case m.presses(ActionCameraFar) > 0:
		s.Preset = camera.PresetFar.Name
	case m.presses(ActionCameraFirst) > 0:
		s.Preset = camera.PresetFirstPerson.Name
	}

	down, delta, scroll := m.pointer.take()
	zoom := float64(m.presses(ActionZoomIn)-m.presses(ActionZoomOut)) + scroll
	s.Camera = camera.Input{Dragging: down, Delta: delta, Zoom: zoom}

	// Presses of unbound or held-only keys are never taken; drop them each frame
	m.keys.dropPresses()
	return s
}
