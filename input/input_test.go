package input

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/camera"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestKeyStateHoldWindow(t *testing.T) {
	k := NewKeyState(500 * time.Millisecond)
	k.Press("ArrowUp", t0)

	tests := []struct {
		name string
		at   time.Duration
		want bool
	}{
		{"immediately", 0, true},
		{"inside window", 499 * time.Millisecond, true},
		{"at window edge", 500 * time.Millisecond, false},
		{"after window", time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.IsPressed("arrowup", t0.Add(tt.at)); got != tt.want {
				t.Errorf("IsPressed = %v, want %v", got, tt.want)
			}
		})
	}

	// Auto-repeat extends the hold
	k.Press("arrowup", t0.Add(400*time.Millisecond))
	if !k.IsPressed("arrowup", t0.Add(800*time.Millisecond)) {
		t.Error("repeat did not extend hold")
	}
	k.Release("arrowup")
	if k.IsPressed("arrowup", t0.Add(800*time.Millisecond)) {
		t.Error("Release did not clear key")
	}
}

func TestKeyStateLatchedWithoutWindow(t *testing.T) {
	k := NewKeyState(0)
	k.Press("b", t0)
	if !k.IsPressed("b", t0.Add(time.Hour)) {
		t.Error("latched key released by time")
	}
	k.Release("b")
	if k.IsPressed("b", t0) {
		t.Error("latched key still held after Release")
	}
}

func TestKeyStateCountsFreshPressesOnly(t *testing.T) {
	k := NewKeyState(500 * time.Millisecond)
	k.Press("f2", t0)
	k.Press("f2", t0.Add(50*time.Millisecond))  // repeat
	k.Press("f2", t0.Add(100*time.Millisecond)) // repeat
	if n := k.TakePresses("f2"); n != 1 {
		t.Errorf("presses = %d, want 1", n)
	}
	if n := k.TakePresses("f2"); n != 0 {
		t.Errorf("second take = %d, want 0", n)
	}
	k.Press("f2", t0.Add(2*time.Second))
	if n := k.TakePresses("f2"); n != 1 {
		t.Errorf("press after window = %d, want 1", n)
	}
}

func TestPointerDeltaOnlyWhileDown(t *testing.T) {
	var p Pointer
	p.Move(10, 10)
	if p.Delta() != (mgl64.Vec2{}) {
		t.Errorf("delta accumulated while up: %v", p.Delta())
	}
	p.Down(10, 10)
	p.Move(13, 8)
	p.Move(15, 9)
	if want := (mgl64.Vec2{5, -1}); p.Delta() != want {
		t.Errorf("delta = %v, want %v", p.Delta(), want)
	}
	p.ResetDelta()
	if p.Delta() != (mgl64.Vec2{}) {
		t.Error("ResetDelta did not clear")
	}
	p.Up()
	p.Move(40, 40)
	if p.Delta() != (mgl64.Vec2{}) || p.IsDown() {
		t.Error("pointer tracked movement after Up")
	}
}

func TestBindingsOverride(t *testing.T) {
	b := DefaultBindings()
	if err := b.Override(map[string][]string{"Accelerate": {"W", " "}}); err != nil {
		t.Fatal(err)
	}
	keys := b.Keys(ActionAccelerate)
	if len(keys) != 2 || keys[0] != "w" || keys[1] != "space" {
		t.Errorf("keys = %v", keys)
	}
	if err := b.Override(map[string][]string{"fly": {"x"}}); err == nil {
		t.Error("unknown action accepted")
	}
	if !ActionDevOverlay.IsEdge() || ActionBrake.IsEdge() {
		t.Error("edge classification wrong")
	}
}

func TestSnapshotControlsAndEdges(t *testing.T) {
	m := NewManager(nil, 500*time.Millisecond)
	k := m.Keys()
	k.Press("arrowup", t0)
	k.Press("arrowleft", t0)
	k.Press("space", t0)
	k.Press("shift", t0)
	k.Press("f2", t0)
	k.Press("2", t0)
	k.Press("+", t0)

	s := m.Snapshot(t0.Add(10 * time.Millisecond))
	c := s.Controls
	if !c.Accelerate || !c.SteerLeft || !c.Handbrake || !c.Boost {
		t.Errorf("controls = %+v", c)
	}
	if c.Brake || c.SteerRight {
		t.Errorf("unexpected controls = %+v", c)
	}
	if !s.DevOverlay {
		t.Error("dev overlay edge missed")
	}
	if s.Preset != camera.PresetFar.Name {
		t.Errorf("preset = %q", s.Preset)
	}
	if s.Camera.Zoom != 1 {
		t.Errorf("zoom = %v", s.Camera.Zoom)
	}

	// Edges are consumed; held keys still held
	s = m.Snapshot(t0.Add(20 * time.Millisecond))
	if s.DevOverlay || s.Preset != "" || s.Camera.Zoom != 0 {
		t.Errorf("edges repeated: %+v", s)
	}
	if !s.Controls.Accelerate {
		t.Error("held key dropped")
	}

	// Hold window expires
	s = m.Snapshot(t0.Add(time.Second))
	if s.Controls != (Snapshot{}).Controls {
		t.Errorf("controls after window = %+v", s.Controls)
	}
}

func TestSnapshotResetsPointerDelta(t *testing.T) {
	m := NewManager(nil, 0)
	m.Pointer().Down(0, 0)
	m.Pointer().Move(4, 2)
	m.Pointer().Scroll(-2)

	s := m.Snapshot(t0)
	if !s.Camera.Dragging || s.Camera.Delta != (mgl64.Vec2{4, 2}) || s.Camera.Zoom != -2 {
		t.Errorf("camera input = %+v", s.Camera)
	}
	s = m.Snapshot(t0)
	if s.Camera.Delta != (mgl64.Vec2{}) || s.Camera.Zoom != 0 {
		t.Errorf("pointer delta not reset: %+v", s.Camera)
	}
	if !s.Camera.Dragging {
		t.Error("button state lost")
	}
}

func TestKeyNames(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want []string
	}{
		{"arrow", tcell.KeyUp, 0, 0, []string{"arrowup"}},
		{"shifted arrow", tcell.KeyUp, 0, tcell.ModShift, []string{"arrowup", "shift"}},
		{"space", tcell.KeyRune, ' ', 0, []string{"space"}},
		{"upper rune implies shift", tcell.KeyRune, 'B', 0, []string{"b", "shift"}},
		{"f2", tcell.KeyF2, 0, 0, []string{"f2"}},
		{"unmapped", tcell.KeyF12, 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keyNames(tt.key, tt.r, tt.mod)
			if len(got) != len(tt.want) {
				t.Fatalf("keyNames = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keyNames = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTerminalSource(t *testing.T) {
	m := NewManager(nil, 500*time.Millisecond)
	src := NewTerminalSource(m)

	if !src.handleKey(tcell.KeyRune, 'B', 0, t0) {
		t.Fatal("key not consumed")
	}
	s := m.Snapshot(t0)
	if !s.Controls.Handbrake || !s.Controls.Boost {
		t.Errorf("shift+b controls = %+v", s.Controls)
	}

	src.HandleEvent(tcell.NewEventMouse(5, 5, tcell.Button1, tcell.ModNone))
	src.HandleEvent(tcell.NewEventMouse(9, 3, tcell.Button1, tcell.ModNone))
	src.HandleEvent(tcell.NewEventMouse(10, 3, tcell.ButtonNone, tcell.ModNone))
	src.HandleEvent(tcell.NewEventMouse(10, 3, tcell.WheelUp, tcell.ModNone))

	s = m.Snapshot(t0)
	if s.Camera.Dragging {
		t.Error("button still down after release event")
	}
	if want := (mgl64.Vec2{5, -2}); s.Camera.Delta != want {
		t.Errorf("drag delta = %v, want %v", s.Camera.Delta, want)
	}
	if s.Camera.Zoom != 1 {
		t.Errorf("wheel zoom = %v", s.Camera.Zoom)
	}
}
