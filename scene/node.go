// Package scene holds the render-side transform nodes the vehicle core writes into
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/vmath"
)

// Node is a render transform owned by the visual layer
type Node interface {
	SetPosition(p mgl64.Vec3)
	SetOrientation(q mgl64.Quat)
	Position() mgl64.Vec3
	Orientation() mgl64.Quat
}

// Shape tells a renderer how to draw a node
type Shape uint8

const (
	ShapeModel Shape = iota
	ShapeBox
	ShapeCylinder
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "model"
	}
}

// Transform is a concrete Node with draw metadata
type Transform struct {
	Name  string
	Shape Shape
	// Size is full extents for boxes, (radius, width, segments) for cylinders
	Size  mgl64.Vec3
	Scale mgl64.Vec3
	Color uint32
	// Source is the asset path a model node was loaded from
	Source string

	// Placeholder marks procedural geometry standing in for a pending load
	Placeholder bool

	Children []*Transform

	pose vmath.Pose
}

// NewTransform creates a node at the origin with unit scale
func NewTransform(name string, shape Shape) *Transform {
	return &Transform{
		Name:  name,
		Shape: shape,
		Scale: mgl64.Vec3{1, 1, 1},
		pose:  vmath.IdentityPose(),
	}
}

func (t *Transform) SetPosition(p mgl64.Vec3)    { t.pose.Position = p }
func (t *Transform) SetOrientation(q mgl64.Quat) { t.pose.Orientation = q }
func (t *Transform) Position() mgl64.Vec3         { return t.pose.Position }
func (t *Transform) Orientation() mgl64.Quat      { return t.pose.Orientation }

// Pose returns position and orientation together
func (t *Transform) Pose() vmath.Pose { return t.pose }

// Add attaches a child node
func (t *Transform) Add(child *Transform) {
	t.Children = append(t.Children, child)
}

// ChildLocalToWorld maps a child's local position through this node's pose
func (t *Transform) ChildLocalToWorld(child *Transform) mgl64.Vec3 {
	return t.pose.LocalToWorld(child.Position())
}

// Clone returns a deep copy of t and its children
func (t *Transform) Clone() *Transform {
	c := *t
	c.Children = make([]*Transform, len(t.Children))
	for i, child := range t.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}
