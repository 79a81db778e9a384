package constraint

import (
	"github.com/akmonengine/fabrik/chain"
	"github.com/go-gl/mathgl/mgl64"
)

// Hinge keeps a bone in the plane going through its parent joint, with normal Axis.
// Axis is expressed in the frame of the chain and does not need to be normalized.
type Hinge struct {
	Axis     mgl64.Vec3
	Disabled bool
}

func (h *Hinge) Enabled() bool {
	return !h.Disabled
}

func (h *Hinge) Setup(index int, input chain.Chain, constraints Table, working chain.Chain) {}

// Enforce projects the bone onto the hinge plane, keeping its current length.
// A bone lying along the axis has no defined projection and is left untouched.
func (h *Hinge) Enforce(index int, input chain.Chain, constraints Table, working chain.Chain, owner any) {
	if index+1 >= len(working) {
		return
	}

	axisLength := h.Axis.Len()
	if chain.IsNearlyZero(axisLength) {
		return
	}
	normal := h.Axis.Mul(1.0 / axisLength)

	parent := working[index].Position
	delta := working[index+1].Position.Sub(parent)
	length := delta.Len()
	if chain.IsNearlyZero(length) {
		return
	}

	projected := delta.Sub(normal.Mul(delta.Dot(normal)))
	projectedLength := projected.Len()
	if chain.IsNearlyZero(projectedLength) {
		return
	}

	working[index+1].Position = parent.Add(projected.Mul(length / projectedLength))
}
