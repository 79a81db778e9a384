package constraint

import (
	"math"

	"github.com/akmonengine/fabrik/chain"
	"github.com/go-gl/mathgl/mgl64"
)

// Cone limits the angle between a bone and its parent bone to MaxAngle (radians).
// The root bone has no parent and is measured against its rest direction in the input chain.
//
// Setup caches the reference direction on the Cone, so an instance must not be
// shared by chains solved concurrently.
type Cone struct {
	MaxAngle float64
	Disabled bool

	reference    mgl64.Vec3
	hasReference bool
}

func (c *Cone) Enabled() bool {
	return !c.Disabled
}

func (c *Cone) Setup(index int, input chain.Chain, constraints Table, working chain.Chain) {
	c.hasReference = false
	if index+1 >= len(working) || index+1 >= len(input) {
		return
	}

	if index > 0 {
		c.reference, c.hasReference = chain.Direction(working[index-1].Position, working[index].Position)
	}
	if !c.hasReference {
		c.reference, c.hasReference = chain.Direction(input[index].Position, input[index+1].Position)
	}
}

// Enforce rotates the bone back onto the cone surface when it leaves the cone.
// The bone keeps its current length.
func (c *Cone) Enforce(index int, input chain.Chain, constraints Table, working chain.Chain, owner any) {
	if !c.hasReference || index+1 >= len(working) {
		return
	}

	parent := working[index].Position
	delta := working[index+1].Position.Sub(parent)
	length := delta.Len()
	if chain.IsNearlyZero(length) {
		return
	}
	direction := delta.Mul(1.0 / length)

	angle := math.Acos(mgl64.Clamp(c.reference.Dot(direction), -1, 1))
	if angle <= c.MaxAngle {
		return
	}

	axis := c.reference.Cross(direction)
	if chain.IsNearlyZero(axis.Len()) {
		axis = chain.Perpendicular(c.reference)
	} else {
		axis = axis.Normalize()
	}

	clamped := mgl64.QuatRotate(math.Max(c.MaxAngle, 0), axis).Rotate(c.reference)
	working[index+1].Position = parent.Add(clamped.Mul(length))
}
