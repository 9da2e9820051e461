// Package pose copies physics wheel and chassis transforms onto render nodes
package pose

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/scene"
	"github.com/lixenwraith/vi-drive/vmath"
)

var ErrNodeCount = errors.New("pose: wheel node count does not match vehicle")

// Synchronizer writes one vehicle's poses into its visual nodes every frame
// It reads the vehicle and never retains computed state between calls
type Synchronizer struct {
	visual catalog.Visual
}

// NewSynchronizer uses the visual corrections of profile p
func NewSynchronizer(p catalog.Profile) *Synchronizer {
	return &Synchronizer{visual: p.Visual}
}

// SetProfile swaps the visual corrections
func (s *Synchronizer) SetProfile(p catalog.Profile) {
	s.visual = p.Visual
}

// SyncWheels updates every wheel transform and copies it onto the matching node
// with the profile rotation correction applied about local X, Y, then Z
func (s *Synchronizer) SyncWheels(v physics.Vehicle, wheels []scene.Node) error {
	n := v.WheelCount()
	if len(wheels) != n {
		return fmt.Errorf("%w: %d nodes, %d wheels", ErrNodeCount, len(wheels), n)
	}
	for i := 0; i < n; i++ {
		v.UpdateWheelTransform(i)
		t := v.WheelTransform(i)
		wheels[i].SetPosition(t.Position)
		wheels[i].SetOrientation(vmath.RotateLocal(t.Orientation, s.wheelRotation(i)))
	}
	return nil
}

func (s *Synchronizer) wheelRotation(i int) vmath.Euler {
	if i < len(s.visual.Wheels) {
		return s.visual.Wheels[i].Rotation
	}
	return vmath.Euler{}
}

// SyncChassis copies the chassis pose onto body, adding the profile offset
// rotated into the chassis frame, then the rotation correction
func (s *Synchronizer) SyncChassis(v physics.Vehicle, body scene.Node) {
	c := v.ChassisPose()
	body.SetPosition(c.LocalToWorld(s.visual.BodyOffset))
	body.SetOrientation(vmath.RotateLocal(c.Orientation, s.visual.BodyRotation))
}

// Sync updates the body and all wheels
func (s *Synchronizer) Sync(v physics.Vehicle, body scene.Node, wheels []scene.Node) error {
	if body != nil {
		s.SyncChassis(v, body)
	}
	return s.SyncWheels(v, wheels)
}
