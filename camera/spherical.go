package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const polarEpsilon = 1e-6

// Spherical is an orbit offset: Radius from the target, Theta azimuth about +Y
// measured from +Z, Phi polar angle from +Y
type Spherical struct {
	Radius float64
	Theta  float64
	Phi    float64
}

// SphericalFromVec converts a target-relative offset
func SphericalFromVec(v mgl64.Vec3) Spherical {
	r := v.Len()
	if r == 0 {
		return Spherical{Phi: math.Pi / 2}
	}
	return Spherical{
		Radius: r,
		Theta:  math.Atan2(v.X(), v.Z()),
		Phi:    math.Acos(mgl64.Clamp(v.Y()/r, -1, 1)),
	}
}

// Vec converts back to a target-relative offset
func (s Spherical) Vec() mgl64.Vec3 {
	sinPhi := math.Sin(s.Phi) * s.Radius
	return mgl64.Vec3{
		sinPhi * math.Sin(s.Theta),
		math.Cos(s.Phi) * s.Radius,
		sinPhi * math.Cos(s.Theta),
	}
}

// makeSafe keeps phi off the poles where theta is undefined
func (s *Spherical) makeSafe() {
	s.Phi = mgl64.Clamp(s.Phi, polarEpsilon, math.Pi-polarEpsilon)
}
