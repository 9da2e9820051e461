package input

import (
	"sync"
	"time"
)

// KeyState tracks which keys are held
// Press-and-release sources call Press and Release; press-only sources rely on the hold window
type KeyState struct {
	mu      sync.Mutex
	window  time.Duration
	last    map[string]time.Time
	latched map[string]bool
	edges   map[string]int
}

// NewKeyState creates a tracker; window <= 0 means keys stay held until Release
func NewKeyState(window time.Duration) *KeyState {
	return &KeyState{
		window:  window,
		last:    make(map[string]time.Time),
		latched: make(map[string]bool),
		edges:   make(map[string]int),
	}
}

// Press records a press or auto-repeat of name at t
func (k *KeyState) Press(name string, t time.Time) {
	name = NormalizeKey(name)
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.heldLocked(name, t) {
		k.edges[name]++
	}
	k.last[name] = t
	if k.window <= 0 {
		k.latched[name] = true
	}
}

// Release clears name immediately
func (k *KeyState) Release(name string) {
	name = NormalizeKey(name)
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.last, name)
	delete(k.latched, name)
}

// IsPressed reports whether name is held at now
func (k *KeyState) IsPressed(name string, now time.Time) bool {
	name = NormalizeKey(name)
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.heldLocked(name, now)
}

func (k *KeyState) heldLocked(name string, now time.Time) bool {
	if k.latched[name] {
		return true
	}
	t, ok := k.last[name]
	if !ok || k.window <= 0 {
		return false
	}
	return now.Sub(t) < k.window
}

// TakePresses returns and clears the number of fresh presses of name
// Auto-repeats within the hold window are not counted
func (k *KeyState) TakePresses(name string) int {
	name = NormalizeKey(name)
	k.mu.Lock()
	defer k.mu.Unlock()
	n := k.edges[name]
	delete(k.edges, name)
	return n
}

// Clear releases every key and drops pending presses
func (k *KeyState) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.last)
	clear(k.latched)
	clear(k.edges)
}

func (k *KeyState) dropPresses() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.edges)
}
