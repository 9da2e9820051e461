package parameter

import "math"

// Orbit Limits
const (
	// CameraMinDistance is the closest zoom distance to the orbit target
	CameraMinDistance = 1.0

	// CameraMaxDistance is the farthest zoom distance to the orbit target
	CameraMaxDistance = 15.0

	// CameraMinPolarAngle keeps the camera off the straight-down pole
	CameraMinPolarAngle = 0.1

	// CameraMaxPolarAngle keeps the camera at or above the ground plane
	CameraMaxPolarAngle = math.Pi / 2
)

// Orbit Feel
const (
	// CameraDampingFactor is the fraction of residual orbital delta applied each frame
	CameraDampingFactor = 0.05

	// CameraRotateSpeed converts pointer delta (cells or pixels) into angular velocity (rad/frame)
	CameraRotateSpeed = 0.6 * 2 * math.Pi / 360

	// CameraZoomSpeed scales one zoom step
	CameraZoomSpeed = 0.8

	// CameraOrbitFriction decays angular velocity each frame after the pointer is released
	CameraOrbitFriction = 0.92

	// CameraMinAngularVelocity is the magnitude below which angular velocity snaps to zero
	CameraMinAngularVelocity = 1e-4
)

// Chase Follow
const (
	// CameraChaseDistance is how far behind the target the chase camera sits
	CameraChaseDistance = 2.0

	// CameraChaseHeight is the chase camera height above the target
	CameraChaseHeight = 0.8

	// CameraChaseLerpRate is k in clamp(k*dt, 0, 1)
	CameraChaseLerpRate = 2.5

	// CameraReverseSpeed is the forward speed below which the chase camera treats the target as reversing
	CameraReverseSpeed = -0.5
)

// Presets
const (
	CameraNearDistance        = 2.0
	CameraNearFOV             = 45.0
	CameraFarDistance         = 5.0
	CameraFarFOV              = 60.0
	CameraFirstPersonDistance = 0.0
	CameraFirstPersonFOV      = 75.0
)
