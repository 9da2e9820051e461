// Package telemetry samples the active vehicle and delivers frames to sinks
// (a gorm store, InfluxDB, a websocket stream) off the frame loop.
package telemetry

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/dynamics"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Source is what a frame is captured from; *player.Player satisfies it
type Source interface {
	ProfileID() string
	CurrentSpeed() float64
	RawSpeed() float64
	WheelAngle() float64
	Position() mgl64.Vec3
	Rotation() vmath.Euler
	State() dynamics.State
	Output() dynamics.Output
}

// Frame is one telemetry sample
type Frame struct {
	Time      time.Time `json:"time"`
	ProfileID string    `json:"profile"`

	// Speed is display-converted; RawSpeed is forward-positive m/s
	Speed      float64 `json:"speed"`
	RawSpeed   float64 `json:"raw_speed"`
	WheelAngle float64 `json:"wheel_angle"`

	Position mgl64.Vec3  `json:"position"`
	Rotation vmath.Euler `json:"rotation"`

	Steering    float64 `json:"steering"`
	Boost       float64 `json:"boost"`
	EngineForce float64 `json:"engine_force"`
	Reversing   bool    `json:"reversing"`
}

// Capture reads src at t
// EngineForce is the largest magnitude force applied to any wheel, with its sign
func Capture(src Source, t time.Time) Frame {
	st := src.State()
	out := src.Output()

	var force float64
	for _, f := range out.EngineForce {
		if math.Abs(f) > math.Abs(force) {
			force = f
		}
	}

	return Frame{
		Time:        t,
		ProfileID:   src.ProfileID(),
		Speed:       src.CurrentSpeed(),
		RawSpeed:    src.RawSpeed(),
		WheelAngle:  src.WheelAngle(),
		Position:    src.Position(),
		Rotation:    src.Rotation(),
		Steering:    st.Steering,
		Boost:       st.Boost,
		EngineForce: force,
		Reversing:   out.Reversing,
	}
}

// Readout is the dev overlay text of one frame
type Readout struct {
	Speed      string
	Position   string
	Rotation   string
	WheelAngle string
}

func NewReadout(f Frame) Readout {
	p, r := f.Position, f.Rotation
	return Readout{
		Speed:      fmt.Sprintf("%.2f", f.Speed),
		Position:   fmt.Sprintf("X: %.2f Y: %.2f Z: %.2f", p.X(), p.Y(), p.Z()),
		Rotation:   fmt.Sprintf("X: %.2f Y: %.2f Z: %.2f", r.X, r.Y, r.Z),
		WheelAngle: fmt.Sprintf("%.2f°", f.WheelAngle),
	}
}

// Lines returns the readout as labelled overlay lines; unit follows the speed value
func (r Readout) Lines(unit string) []string {
	speed := r.Speed
	if unit != "" {
		speed += " " + unit
	}
	return []string{
		"Speed: " + speed,
		"Position: " + r.Position,
		"Rotation: " + r.Rotation,
		"Wheel: " + r.WheelAngle,
	}
}
