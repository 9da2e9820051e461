// Package input folds raw key and pointer events into one immutable snapshot per frame.
//
// Key events are recorded by name in a KeyState. Some sources (terminals) never report
// releases, so a key can count as held for a window after its last press or repeat.
// Bindings map action names to key names; Manager.Snapshot resolves them once per frame
// into dynamics controls, camera input and edge-triggered toggles.
package input

import (
	"fmt"
	"sort"
	"strings"
)

// Action is a named driver or UI intent
type Action string

// Held actions, sampled every frame
const (
	ActionSteerLeft  Action = "steer_left"
	ActionSteerRight Action = "steer_right"
	ActionAccelerate Action = "accelerate"
	ActionBrake      Action = "brake"
	ActionHandbrake  Action = "handbrake"
	ActionBoost      Action = "boost"
)

// Edge actions, reported once per press
const (
	ActionDevOverlay  Action = "dev_overlay"
	ActionNextVehicle Action = "next_vehicle"
	ActionCameraMode  Action = "camera_mode"
	ActionCameraNear  Action = "camera_near"
	ActionCameraFar   Action = "camera_far"
	ActionCameraFirst Action = "camera_first_person"
	ActionZoomIn      Action = "zoom_in"
	ActionZoomOut     Action = "zoom_out"
	ActionQuit        Action = "quit"
)

var edgeActions = map[Action]bool{
	ActionDevOverlay:  true,
	ActionNextVehicle: true,
	ActionCameraMode:  true,
	ActionCameraNear:  true,
	ActionCameraFar:   true,
	ActionCameraFirst: true,
	ActionZoomIn:      true,
	ActionZoomOut:     true,
	ActionQuit:        true,
}

// IsEdge reports whether a is reported once per press rather than while held
func (a Action) IsEdge() bool {
	return edgeActions[a]
}

// Bindings maps actions to key names
type Bindings struct {
	keys map[Action][]string
}

// DefaultBindings returns the stock keyboard layout
func DefaultBindings() *Bindings {
	return &Bindings{keys: map[Action][]string{
		ActionSteerLeft:   {"arrowleft"},
		ActionSteerRight:  {"arrowright"},
		ActionAccelerate:  {"arrowup"},
		ActionBrake:       {"arrowdown"},
		ActionHandbrake:   {"b", "space"},
		ActionBoost:       {"shift"},
		ActionDevOverlay:  {"f2"},
		ActionNextVehicle: {"v"},
		ActionCameraMode:  {"c"},
		ActionCameraNear:  {"1"},
		ActionCameraFar:   {"2"},
		ActionCameraFirst: {"3"},
		ActionZoomIn:      {"+", "="},
		ActionZoomOut:     {"-"},
		ActionQuit:        {"esc", "ctrl+c"},
	}}
}

// NormalizeKey lowercases and trims a key name; a bare space becomes "space"
func NormalizeKey(name string) string {
	if name == " " {
		return "space"
	}
	return strings.ToLower(strings.TrimSpace(name))
}

var defaults = DefaultBindings()

// Keys returns the key names bound to a
func (b *Bindings) Keys(a Action) []string {
	return b.keys[a]
}

// Actions returns every bound action in sorted order
func (b *Bindings) Actions() []Action {
	out := make([]Action, 0, len(b.keys))
	for a := range b.keys {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Override replaces the keys of each named action
// Unknown action names are rejected; an empty key list unbinds the action
func (b *Bindings) Override(overrides map[string][]string) error {
	for name, keys := range overrides {
		a := Action(strings.ToLower(name))
		if _, known := defaults.keys[a]; !known {
			return fmt.Errorf("unknown input action %q", name)
		}
		norm := make([]string, 0, len(keys))
		for _, k := range keys {
			if k = NormalizeKey(k); k != "" {
				norm = append(norm, k)
			}
		}
		b.keys[a] = norm
	}
	return nil
}

// Label is a short legend entry such as "arrowup/w"
func (b *Bindings) Label(a Action) string {
	return strings.Join(b.keys[a], "/")
}
