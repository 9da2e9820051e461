package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/lixenwraith/vi-drive/parameter"
	"github.com/lixenwraith/vi-drive/vmath"
)

// profileFile is the on-disk layout of a profiles file
//
//	profiles:
//	  - id: rally
//	    base: bmw_f82
//	    control: { maxForce: 300, traction: all }
type profileFile struct {
	Profiles []profileEntry `mapstructure:"profiles"`
}

// profileEntry overrides fields of a base profile; nil pointers keep the base value
type profileEntry struct {
	ID   string `mapstructure:"id"`
	Base string `mapstructure:"base"`
	Name string `mapstructure:"name"`

	Physics struct {
		Mass                 *float64  `mapstructure:"mass"`
		HalfExtents          []float64 `mapstructure:"halfExtents"`
		WheelRadius          *float64  `mapstructure:"wheelRadius"`
		SuspensionStiffness  *float64  `mapstructure:"suspensionStiffness"`
		SuspensionRestLength *float64  `mapstructure:"suspensionRestLength"`
		DampingRelaxation    *float64  `mapstructure:"dampingRelaxation"`
		DampingCompression   *float64  `mapstructure:"dampingCompression"`
		MaxSuspensionTravel  *float64  `mapstructure:"maxSuspensionTravel"`
		MaxSuspensionForce   *float64  `mapstructure:"maxSuspensionForce"`
		FrictionSlip         *float64  `mapstructure:"frictionSlip"`
		RollInfluence        *float64  `mapstructure:"rollInfluence"`
		ForwardAxis          []float64 `mapstructure:"forwardAxis"`
		SpawnHeight          *float64  `mapstructure:"spawnHeight"`
	} `mapstructure:"physics"`

	Control struct {
		MaxSpeed         *float64 `mapstructure:"maxSpeed"`
		MaxForce         *float64 `mapstructure:"maxForce"`
		MaxBoost         *float64 `mapstructure:"maxBoost"`
		BrakeForce       *float64 `mapstructure:"brakeForce"`
		HandbrakeForce   *float64 `mapstructure:"handbrakeForce"`
		MaxSteer         *float64 `mapstructure:"maxSteer"`
		SteerSpeed       *float64 `mapstructure:"steerSpeed"`
		SteerReturn      *float64 `mapstructure:"steerReturn"`
		Traction         *string  `mapstructure:"traction"`
		ReverseThreshold *float64 `mapstructure:"reverseThreshold"`
	} `mapstructure:"control"`

	Visual struct {
		BodyModel    *string     `mapstructure:"bodyModel"`
		BodyScale    []float64   `mapstructure:"bodyScale"`
		WheelModel   *string     `mapstructure:"wheelModel"`
		WheelScale   []float64   `mapstructure:"wheelScale"`
		BodyOffset   []float64   `mapstructure:"bodyOffset"`
		BodyRotation []float64   `mapstructure:"bodyRotation"`
		WheelWidth   *float64    `mapstructure:"wheelWidth"`
		Wheels       []wheelFile `mapstructure:"wheels"`
	} `mapstructure:"visual"`

	Display struct {
		Scale  *float64 `mapstructure:"scale"`
		Invert *bool    `mapstructure:"invert"`
		Unit   *string  `mapstructure:"unit"`
	} `mapstructure:"display"`
}

type wheelFile struct {
	Position []float64 `mapstructure:"position"`
	Rotation []float64 `mapstructure:"rotation"`
}

// LoadFile reads a TOML, JSON or YAML profiles file and registers every entry
// Entries may inherit from a built-in or previously registered profile via base
// Registration stops at the first invalid entry; entries before it stay registered
func (c *Catalog) LoadFile(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	var f profileFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decoding profiles file: %w", err)
	}

	var added []string
	for i, e := range f.Profiles {
		p, err := c.build(e)
		if err != nil {
			return added, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if err := c.Register(p); err != nil {
			return added, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		added = append(added, p.ID)
	}
	return added, nil
}

func (c *Catalog) build(e profileEntry) (Profile, error) {
	var p Profile
	if e.Base != "" {
		base, ok := c.Get(e.Base)
		if !ok {
			return Profile{}, fmt.Errorf("%w: base %q", ErrUnknownProfile, e.Base)
		}
		p = base
	} else {
		// Unbased entries start from neutral tuning so omitted fields fail validation loudly
		p.Physics.ForwardAxis = vmath.AxisX
		p.Physics.MaxSuspensionForce = parameter.SuspensionMaxForce
		p.Control.Traction = TractionAll
		p.Control.ReverseThreshold = parameter.DefaultReverseThreshold
		p.Control.MaxBoost = parameter.BoostFloor
		p.Display = SpeedDisplay{Scale: 1, Unit: "m/s"}
		p.Visual.WheelWidth = parameter.PlaceholderWheelWidth
	}

	p.ID = e.ID
	p.Name = e.Name
	if p.Name == "" {
		p.Name = e.ID
	}

	ph := e.Physics
	setF(&p.Physics.Mass, ph.Mass)
	setF(&p.Physics.WheelRadius, ph.WheelRadius)
	setF(&p.Physics.SuspensionStiffness, ph.SuspensionStiffness)
	setF(&p.Physics.SuspensionRestLength, ph.SuspensionRestLength)
	setF(&p.Physics.DampingRelaxation, ph.DampingRelaxation)
	setF(&p.Physics.DampingCompression, ph.DampingCompression)
	setF(&p.Physics.MaxSuspensionTravel, ph.MaxSuspensionTravel)
	setF(&p.Physics.MaxSuspensionForce, ph.MaxSuspensionForce)
	setF(&p.Physics.FrictionSlip, ph.FrictionSlip)
	setF(&p.Physics.RollInfluence, ph.RollInfluence)
	setF(&p.Physics.SpawnHeight, ph.SpawnHeight)
	if err := setVec(&p.Physics.HalfExtents, ph.HalfExtents, "physics.halfExtents"); err != nil {
		return Profile{}, err
	}
	if err := setVec(&p.Physics.ForwardAxis, ph.ForwardAxis, "physics.forwardAxis"); err != nil {
		return Profile{}, err
	}

	ct := e.Control
	setF(&p.Control.MaxSpeed, ct.MaxSpeed)
	setF(&p.Control.MaxForce, ct.MaxForce)
	setF(&p.Control.MaxBoost, ct.MaxBoost)
	setF(&p.Control.BrakeForce, ct.BrakeForce)
	setF(&p.Control.HandbrakeForce, ct.HandbrakeForce)
	setF(&p.Control.MaxSteer, ct.MaxSteer)
	setF(&p.Control.SteerSpeed, ct.SteerSpeed)
	setF(&p.Control.SteerReturn, ct.SteerReturn)
	setF(&p.Control.ReverseThreshold, ct.ReverseThreshold)
	if ct.Traction != nil {
		t, err := ParseTraction(*ct.Traction)
		if err != nil {
			return Profile{}, err
		}
		p.Control.Traction = t
	}

	vs := e.Visual
	if vs.BodyModel != nil {
		p.Visual.Body.Path = *vs.BodyModel
	}
	if vs.WheelModel != nil {
		p.Visual.Wheel.Path = *vs.WheelModel
	}
	setF(&p.Visual.WheelWidth, vs.WheelWidth)
	if err := setVec(&p.Visual.Body.Scale, vs.BodyScale, "visual.bodyScale"); err != nil {
		return Profile{}, err
	}
	if err := setVec(&p.Visual.Wheel.Scale, vs.WheelScale, "visual.wheelScale"); err != nil {
		return Profile{}, err
	}
	if err := setVec(&p.Visual.BodyOffset, vs.BodyOffset, "visual.bodyOffset"); err != nil {
		return Profile{}, err
	}
	if err := setEuler(&p.Visual.BodyRotation, vs.BodyRotation, "visual.bodyRotation"); err != nil {
		return Profile{}, err
	}

	if vs.Wheels != nil {
		if len(vs.Wheels) != parameter.WheelCount {
			return Profile{}, fmt.Errorf("%w: %s: visual.wheels has %d entries, want %d",
				ErrInvalidProfile, e.ID, len(vs.Wheels), parameter.WheelCount)
		}
		for i, w := range vs.Wheels {
			adj := WheelAdjustment{}
			if err := setVec(&adj.Position, w.Position, fmt.Sprintf("visual.wheels[%d].position", i)); err != nil {
				return Profile{}, err
			}
			if err := setEuler(&adj.Rotation, w.Rotation, fmt.Sprintf("visual.wheels[%d].rotation", i)); err != nil {
				return Profile{}, err
			}
			p.Visual.Wheels[i] = adj
			p.Physics.WheelConnections[i] = adj.Position
		}
	}

	d := e.Display
	setF(&p.Display.Scale, d.Scale)
	if d.Invert != nil {
		p.Display.Invert = *d.Invert
	}
	if d.Unit != nil {
		p.Display.Unit = *d.Unit
	}

	return p, nil
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setVec(dst *mgl64.Vec3, v []float64, field string) error {
	if v == nil {
		return nil
	}
	if len(v) != 3 {
		return fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalidProfile, field, len(v))
	}
	*dst = mgl64.Vec3{v[0], v[1], v[2]}
	return nil
}

func setEuler(dst *vmath.Euler, v []float64, field string) error {
	if v == nil {
		return nil
	}
	if len(v) != 3 {
		return fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalidProfile, field, len(v))
	}
	*dst = vmath.Euler{X: v[0], Y: v[1], Z: v[2]}
	return nil
}
