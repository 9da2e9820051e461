package catalog

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Built-in profile ids
const (
	MercedesG63 = "mercedes_g63"
	BMWF82      = "bmw_f82"
	Classic     = "classic"
)

// DefaultID is the fallback for unknown ids
const DefaultID = MercedesG63

var wheelUpright = vmath.Euler{X: math.Pi / 2}

var kmh = SpeedDisplay{Scale: 3.6, Unit: "km/h"}

// wheelTable builds FL, FR, RL, RR adjustments from front/rear x and half track z
// Left is -Z for a +X forward chassis
func wheelTable(frontX, rearX, frontZ, rearZ float64) [parameter.WheelCount]WheelAdjustment {
	return [parameter.WheelCount]WheelAdjustment{
		{Position: mgl64.Vec3{frontX, 0, -frontZ}, Rotation: wheelUpright},
		{Position: mgl64.Vec3{frontX, 0, frontZ}, Rotation: wheelUpright},
		{Position: mgl64.Vec3{rearX, 0, -rearZ}, Rotation: wheelUpright},
		{Position: mgl64.Vec3{rearX, 0, rearZ}, Rotation: wheelUpright},
	}
}

func connections(w [parameter.WheelCount]WheelAdjustment) [parameter.WheelCount]mgl64.Vec3 {
	var out [parameter.WheelCount]mgl64.Vec3
	for i := range w {
		out[i] = w[i].Position
	}
	return out
}

func mercedesG63() Profile {
	wheels := wheelTable(0.74, -0.645, 0.4, 0.4)
	return Profile{
		ID:   MercedesG63,
		Name: "Mercedes G63",
		Physics: Physics{
			Mass:                 400,
			HalfExtents:          mgl64.Vec3{1.15, 0.3, 0.45},
			WheelRadius:          0.19,
			SuspensionStiffness:  50,
			SuspensionRestLength: 0.4,
			DampingRelaxation:    2.3,
			DampingCompression:   4.5,
			MaxSuspensionTravel:  0.4,
			MaxSuspensionForce:   parameter.SuspensionMaxForce,
			FrictionSlip:         1.8,
			RollInfluence:        0.3,
			WheelConnections:     connections(wheels),
			ForwardAxis:          vmath.AxisX,
			SpawnHeight:          1,
		},
		Control: Control{
			MaxSpeed:         20,
			MaxForce:         400,
			MaxBoost:         3,
			BrakeForce:       5,
			HandbrakeForce:   10,
			MaxSteer:         0.5,
			SteerSpeed:       2.0,
			SteerReturn:      2.0,
			Traction:         TractionAll,
			ReverseThreshold: parameter.DefaultReverseThreshold,
		},
		Visual: Visual{
			Body:         Model{Path: "assets/models/mercedes_g63/car.gltf", Scale: mgl64.Vec3{0.5, 0.5, 0.5}},
			Wheel:        Model{Path: "assets/models/wheel/rodas.gltf", Scale: mgl64.Vec3{0.4, 0.4, 0.4}},
			BodyOffset:   mgl64.Vec3{0, -0.33, 0},
			BodyRotation: vmath.Euler{Y: math.Pi / 2},
			Wheels:       wheels,
			WheelWidth:   parameter.PlaceholderWheelWidth,
		},
		Display: kmh,
	}
}

func bmwF82() Profile {
	wheels := wheelTable(0.747, -0.664, 0.405, 0.4)
	return Profile{
		ID:   BMWF82,
		Name: "BMW M4 F82",
		Physics: Physics{
			Mass:                 200,
			HalfExtents:          mgl64.Vec3{1.15, 0.3, 0.45},
			WheelRadius:          0.165,
			SuspensionStiffness:  60,
			SuspensionRestLength: 0.285,
			DampingRelaxation:    2.3,
			DampingCompression:   4.5,
			MaxSuspensionTravel:  0.2,
			MaxSuspensionForce:   parameter.SuspensionMaxForce,
			FrictionSlip:         2.5,
			RollInfluence:        0.1,
			WheelConnections:     connections(wheels),
			ForwardAxis:          vmath.AxisX,
			SpawnHeight:          1,
		},
		Control: Control{
			MaxSpeed:         20,
			MaxForce:         200,
			MaxBoost:         3,
			BrakeForce:       3,
			HandbrakeForce:   7,
			MaxSteer:         0.6,
			SteerSpeed:       1.3,
			SteerReturn:      2.0,
			Traction:         TractionRear,
			ReverseThreshold: parameter.DefaultReverseThreshold,
		},
		Visual: Visual{
			Body:         Model{Path: "assets/models/bmw_m4_f82/bmw_m4_f82.gltf", Scale: mgl64.Vec3{0.5, 0.5, 0.5}},
			Wheel:        Model{Path: "assets/models/wheel/rodas.gltf", Scale: mgl64.Vec3{0.4, 0.4, 0.4}},
			BodyOffset:   mgl64.Vec3{0.1, -0.33, 0},
			BodyRotation: vmath.Euler{Y: math.Pi / 2},
			Wheels:       wheels,
			WheelWidth:   parameter.PlaceholderWheelWidth,
		},
		Display: kmh,
	}
}

// classic is the single-model car with a -X forward chassis
// Left is +Z for a -X forward chassis, so wheels 0 and 2 sit at +Z
func classic() Profile {
	wheels := [parameter.WheelCount]WheelAdjustment{
		{Position: mgl64.Vec3{-1.36, 0, 0.7}, Rotation: wheelUpright},
		{Position: mgl64.Vec3{-1.36, 0, -0.7}, Rotation: wheelUpright},
		{Position: mgl64.Vec3{1.22, 0, 0.7}, Rotation: wheelUpright},
		{Position: mgl64.Vec3{1.22, 0, -0.7}, Rotation: wheelUpright},
	}
	return Profile{
		ID:   Classic,
		Name: "Classic",
		Physics: Physics{
			Mass:                 150,
			HalfExtents:          mgl64.Vec3{2.1, 0.5, 0.85},
			WheelRadius:          0.35,
			SuspensionStiffness:  50,
			SuspensionRestLength: 0.6,
			DampingRelaxation:    2.3,
			DampingCompression:   4.5,
			MaxSuspensionTravel:  0.9,
			MaxSuspensionForce:   parameter.SuspensionMaxForce,
			FrictionSlip:         2,
			RollInfluence:        0.2,
			WheelConnections:     connections(wheels),
			ForwardAxis:          mgl64.Vec3{-1, 0, 0},
			SpawnHeight:          1,
		},
		Control: Control{
			MaxSpeed:         20,
			MaxForce:         400,
			MaxBoost:         1.5,
			BrakeForce:       5,
			HandbrakeForce:   10,
			MaxSteer:         0.5,
			SteerSpeed:       2.0,
			SteerReturn:      2.0,
			Traction:         TractionAll,
			ReverseThreshold: parameter.DefaultReverseThreshold,
		},
		Visual: Visual{
			Body:         Model{Path: "assets/models/car/car.gltf", Scale: mgl64.Vec3{0.9, 0.9, 0.9}},
			BodyOffset:   mgl64.Vec3{0, -0.6, 0},
			BodyRotation: vmath.Euler{Y: -math.Pi / 2},
			Wheels:       wheels,
			WheelWidth:   0.28,
		},
		Display: SpeedDisplay{Scale: 1, Unit: "m/s"},
	}
}

// Builtin returns the profiles shipped with the sandbox, default first
func Builtin() []Profile {
	return []Profile{mercedesG63(), bmwF82(), classic()}
}
