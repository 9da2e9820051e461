package parameter

// Steering
const (
	// SteerSpeedFactorDivisor normalises |speed| into the [0,1] speed factor
	SteerSpeedFactorDivisor = 100.0

	// SteerSpeedDamping is how much of the steering rate is lost at full speed factor
	SteerSpeedDamping = 0.5

	// SteerReturnBoost is how much faster the wheel self-centres at full speed factor
	SteerReturnBoost = 0.5
)

// Drivetrain
const (
	// DefaultReverseThreshold is the near-stopped speed magnitude (m/s) below which brake engages reverse
	DefaultReverseThreshold = 2.0

	// BoostDecayRatio scales the boost multiplier every frame once boost is released
	BoostDecayRatio = 0.8

	// BoostFloor is the neutral boost multiplier
	BoostFloor = 1.0
)

// Wheel Layout
const (
	// WheelCount is the number of wheels on every supported vehicle
	WheelCount = 4

	WheelFrontLeft  = 0
	WheelFrontRight = 1
	WheelRearLeft   = 2
	WheelRearRight  = 3
)

// Substrate Defaults
const (
	// SuspensionMaxForce is the per-wheel suspension force cap
	SuspensionMaxForce = 100000.0

	// CustomSlidingRotationalSpeed is the wheel spin used while sliding
	CustomSlidingRotationalSpeed = -30.0
)

// Arcade Substrate
const (
	// ArcadeBrakeGain converts summed brake values into a decelerating force (N per unit)
	ArcadeBrakeGain = 100.0

	// ArcadeDragCoeff is the quadratic drag acceleration per (m/s)²
	ArcadeDragCoeff = 0.008

	// ArcadeRollingCoeff is the linear rolling resistance acceleration per m/s
	ArcadeRollingCoeff = 0.1

	// ArcadeStopSpeed is the |speed| below which an undriven vehicle snaps to rest
	ArcadeStopSpeed = 0.1

	// ArcadeMinWheelbase guards the yaw rate against degenerate wheel layouts
	ArcadeMinWheelbase = 0.1
)
