package render

import "github.com/gdamore/tcell/v2"

// Priority determines render order. Lower values render first
type Priority int

const (
	PriorityGround Priority = iota
	PriorityObstacle
	PriorityVehicle
	PriorityHUD
	PriorityOverlay
)

// Renderer draws one layer into the buffer
type Renderer interface {
	Render(ctx Context, buf *Buffer)
}

// VisibilityToggle is optionally implemented for runtime enable/disable
type VisibilityToggle interface {
	IsVisible() bool
}

type rendererEntry struct {
	renderer Renderer
	priority Priority
	index    int
}

// Orchestrator clears, renders every layer in priority order and flushes to the screen
type Orchestrator struct {
	screen    tcell.Screen
	buffer    *Buffer
	renderers []rendererEntry
	regCount  int
}

func NewOrchestrator(screen tcell.Screen) *Orchestrator {
	w, h := screen.Size()
	return &Orchestrator{
		screen:    screen,
		buffer:    NewBuffer(w, h),
		renderers: make([]rendererEntry, 0, 8),
	}
}

// Register adds a renderer at priority; equal priorities keep registration order
func (o *Orchestrator) Register(r Renderer, priority Priority) {
	entry := rendererEntry{renderer: r, priority: priority, index: o.regCount}
	o.regCount++

	pos := len(o.renderers)
	for i, e := range o.renderers {
		if priority < e.priority {
			pos = i
			break
		}
	}
	o.renderers = append(o.renderers, rendererEntry{})
	copy(o.renderers[pos+1:], o.renderers[pos:])
	o.renderers[pos] = entry
}

// Resize follows a terminal resize
func (o *Orchestrator) Resize(width, height int) {
	o.buffer.Resize(width, height)
	o.screen.Sync()
}

func (o *Orchestrator) Size() (int, int) { return o.buffer.Width(), o.buffer.Height() }

func (o *Orchestrator) Buffer() *Buffer { return o.buffer }

// RenderFrame draws ctx and shows the screen
func (o *Orchestrator) RenderFrame(ctx Context) {
	o.buffer.Clear()
	for _, e := range o.renderers {
		if vt, ok := e.renderer.(VisibilityToggle); ok && !vt.IsVisible() {
			continue
		}
		e.renderer.Render(ctx, o.buffer)
	}
	o.buffer.Flush(o.screen)
	o.screen.Show()
}
