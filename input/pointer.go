package input

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Pointer tracks the primary button and drag delta
// Movement is accumulated only while the button is down
type Pointer struct {
	mu     sync.Mutex
	down   bool
	pos    mgl64.Vec2
	delta  mgl64.Vec2
	scroll float64
}

// Down presses the button at x, y
func (p *Pointer) Down(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = true
	p.pos = mgl64.Vec2{x, y}
}

// Move reports a new pointer position
func (p *Pointer) Move(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := mgl64.Vec2{x, y}
	if p.down {
		p.delta = p.delta.Add(next.Sub(p.pos))
	}
	p.pos = next
}

// Up releases the button
func (p *Pointer) Up() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = false
}

// Scroll accumulates wheel steps, positive away from the user
func (p *Pointer) Scroll(steps float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scroll += steps
}

func (p *Pointer) IsDown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.down
}

// Delta is the movement accumulated while down since the last ResetDelta
func (p *Pointer) Delta() mgl64.Vec2 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delta
}

// ResetDelta clears accumulated movement and scroll
func (p *Pointer) ResetDelta() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delta = mgl64.Vec2{}
	p.scroll = 0
}

func (p *Pointer) take() (down bool, delta mgl64.Vec2, scroll float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	down, delta, scroll = p.down, p.delta, p.scroll
	p.delta = mgl64.Vec2{}
	p.scroll = 0
	return down, delta, scroll
}
