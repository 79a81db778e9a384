// Package chain models the joints of a skeleton segment handed to the IK solver.
//
// A Chain is an ordered list of joint transforms: index 0 is the root and the
// last index is the effector. Two consecutive joints are connected by a bone,
// whose length is read once from the input chain and then held fixed.
package chain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NearlyZero is the tolerance below which a length is treated as zero.
// Bones shorter than this connect coincident joints and are never normalized.
const NearlyZero = 1e-8

// Chain is an ordered sequence of joints, root first
type Chain []Transform

// Clone returns a copy of the chain that does not share memory with c
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}

	clone := make(Chain, len(c))
	copy(clone, c)

	return clone
}

// EffectorIndex returns the index of the last joint, or -1 for an empty chain
func (c Chain) EffectorIndex() int {
	return len(c) - 1
}

// Positions returns the joint positions in chain order
func (c Chain) Positions() []mgl64.Vec3 {
	positions := make([]mgl64.Vec3, len(c))
	for i, joint := range c {
		positions[i] = joint.Position
	}

	return positions
}

// ComputeBoneLengths returns the length of the bone ending at each joint,
// lengths[0] being always 0 for the root, along with the maximum reach of the chain.
func ComputeBoneLengths(c Chain) (lengths []float64, maximumReach float64) {
	if len(c) == 0 {
		return nil, 0
	}

	lengths = make([]float64, len(c))
	for i := 1; i < len(c); i++ {
		lengths[i] = c[i].Position.Sub(c[i-1].Position).Len()
		maximumReach += lengths[i]
	}

	return lengths, maximumReach
}

// IsNearlyZero reports whether length is below NearlyZero
func IsNearlyZero(length float64) bool {
	return length <= NearlyZero && length >= -NearlyZero
}

// Direction returns the normalized vector from `from` to `to`.
// ok is false when both points are closer than NearlyZero, in which case
// the zero vector is returned instead of a NaN direction.
func Direction(from, to mgl64.Vec3) (direction mgl64.Vec3, ok bool) {
	delta := to.Sub(from)
	length := delta.Len()
	if IsNearlyZero(length) {
		return mgl64.Vec3{}, false
	}

	return delta.Mul(1.0 / length), true
}

// Perpendicular returns a unit vector orthogonal to v, chosen deterministically.
// v is expected to be normalized.
func Perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.Dot(axis)) > 0.9 {
		axis = mgl64.Vec3{0, 1, 0}
	}

	return v.Cross(axis).Normalize()
}
