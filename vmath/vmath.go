package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return mgl64.Clamp(v, lo, hi)
}

// Clamp01 limits v to [0, 1]
func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

// MoveToward steps current toward target by at most step, never overshooting
func MoveToward(current, target, step float64) float64 {
	if step < 0 {
		step = -step
	}
	if current < target {
		current += step
		if current > target {
			current = target
		}
	} else if current > target {
		current -= step
		if current < target {
			current = target
		}
	}
	return current
}

// DecayToZero steps v toward zero by step
// Snaps to exactly 0 once |v| is within one step
func DecayToZero(v, step float64) float64 {
	if step < 0 {
		step = -step
	}
	if math.Abs(v) < step {
		return 0
	}
	if v > 0 {
		return v - step
	}
	if v < 0 {
		return v + step
	}
	return 0
}

// LerpFactor is the frame-rate scaled interpolation weight clamp(k*dt, 0, 1)
func LerpFactor(k, dt float64) float64 {
	return Clamp01(k * dt)
}

// Lerp interpolates between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
	return mgl64.RadToDeg(rad)
}
