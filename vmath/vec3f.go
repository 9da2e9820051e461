package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis unit vectors in the world frame (Y up)
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// V3Lerp interpolates between two vectors
func V3Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// V3Normalize normalizes v, returning the zero vector for zero input
// mgl64 Normalize divides by length unconditionally
func V3Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// V3Near reports whether a and b lie within eps of each other
// mgl64 ApproxEqualThreshold is relative and fails against exact zeros
func V3Near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() < eps
}

// QuatNear compares quaternion components with an absolute tolerance
func QuatNear(a, b mgl64.Quat, eps float64) bool {
	return math.Abs(a.W-b.W) < eps && V3Near(a.V, b.V, eps)
}

// V3IsFinite reports whether every component is a finite number
func V3IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Euler holds rotation angles in radians applied in X, Y, Z order
type Euler struct {
	X, Y, Z float64
}

// IsZero reports whether all angles are zero
func (e Euler) IsZero() bool {
	return e.X == 0 && e.Y == 0 && e.Z == 0
}

// Pose is a world-space position and orientation
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// IdentityPose returns a pose at the origin with no rotation
func IdentityPose() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// LocalToWorld transforms a local-space point into world space
func (p Pose) LocalToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return p.Position.Add(p.Orientation.Rotate(local))
}

// RotateLocal composes rotations about the local X, then Y, then Z axis
// Equivalent to successive rotateX/rotateY/rotateZ calls on a scene node
func RotateLocal(q mgl64.Quat, e Euler) mgl64.Quat {
	if e.X != 0 {
		q = q.Mul(mgl64.QuatRotate(e.X, AxisX))
	}
	if e.Y != 0 {
		q = q.Mul(mgl64.QuatRotate(e.Y, AxisY))
	}
	if e.Z != 0 {
		q = q.Mul(mgl64.QuatRotate(e.Z, AxisZ))
	}
	return q.Normalize()
}

// EulerXYZ decomposes a unit quaternion into XYZ-order Euler angles
func EulerXYZ(q mgl64.Quat) Euler {
	q = q.Normalize()
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]

	m11 := 1 - 2*(y*y+z*z)
	m12 := 2 * (x*y - w*z)
	m13 := 2 * (x*z + w*y)
	m22 := 1 - 2*(x*x+z*z)
	m23 := 2 * (y*z - w*x)
	m32 := 2 * (y*z + w*x)
	m33 := 1 - 2*(x*x+y*y)

	var e Euler
	e.Y = math.Asin(Clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// QuatFromEuler builds an orientation from XYZ-order Euler angles
func QuatFromEuler(e Euler) mgl64.Quat {
	return RotateLocal(mgl64.QuatIdent(), e)
}
