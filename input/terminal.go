package input

import (
	"strings"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var specialKeyNames = map[tcell.Key]string{
	tcell.KeyLeft:   "arrowleft",
	tcell.KeyRight:  "arrowright",
	tcell.KeyUp:     "arrowup",
	tcell.KeyDown:   "arrowdown",
	tcell.KeyEscape: "esc",
	tcell.KeyEnter:  "enter",
	tcell.KeyTab:    "tab",
	tcell.KeyCtrlC:  "ctrl+c",
	tcell.KeyF1:     "f1",
	tcell.KeyF2:     "f2",
	tcell.KeyF3:     "f3",
	tcell.KeyF4:     "f4",
}

// KeyNames returns the key names an event presses, including "shift" when shifted
func KeyNames(ev *tcell.EventKey) []string {
	return keyNames(ev.Key(), ev.Rune(), ev.Modifiers())
}

func keyNames(key tcell.Key, r rune, mod tcell.ModMask) []string {
	var names []string
	shift := mod&tcell.ModShift != 0

	if key == tcell.KeyRune {
		if unicode.IsUpper(r) {
			shift = true
			r = unicode.ToLower(r)
		}
		if r == ' ' {
			names = append(names, "space")
		} else {
			names = append(names, strings.ToLower(string(r)))
		}
	} else if n, ok := specialKeyNames[key]; ok {
		names = append(names, n)
	}

	if shift {
		names = append(names, "shift")
	}
	return names
}

// TerminalSource feeds tcell events into a Manager
// Terminals report presses and repeats only, so the manager's hold window decides release
type TerminalSource struct {
	m       *Manager
	buttons tcell.ButtonMask
}

func NewTerminalSource(m *Manager) *TerminalSource {
	return &TerminalSource{m: m}
}

// HandleEvent records key and mouse events and reports whether ev was consumed
func (s *TerminalSource) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		when := e.When()
		if when.IsZero() {
			when = time.Now()
		}
		return s.handleKey(e.Key(), e.Rune(), e.Modifiers(), when)

	case *tcell.EventMouse:
		x, y := e.Position()
		fx, fy := float64(x), float64(y)
		btn := e.Buttons()
		p := s.m.pointer

		if btn&tcell.WheelUp != 0 {
			p.Scroll(1)
		}
		if btn&tcell.WheelDown != 0 {
			p.Scroll(-1)
		}

		wasDown := s.buttons&tcell.Button1 != 0
		isDown := btn&tcell.Button1 != 0
		switch {
		case isDown && !wasDown:
			p.Down(fx, fy)
		case isDown:
			p.Move(fx, fy)
		case wasDown:
			p.Move(fx, fy)
			p.Up()
		default:
			p.Move(fx, fy)
		}
		s.buttons = btn
		return true
	}
	return false
}

func (s *TerminalSource) handleKey(key tcell.Key, r rune, mod tcell.ModMask, when time.Time) bool {
	names := keyNames(key, r, mod)
	for _, n := range names {
		s.m.keys.Press(n, when)
	}
	return len(names) > 0
}
