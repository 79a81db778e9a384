package fabrik

import (
	"math"

	"github.com/akmonengine/fabrik/chain"
	"github.com/go-gl/mathgl/mgl64"
)

// deltaRotation returns the shortest rotation taking oldDir onto newDir, both normalized.
// Opposite directions have no unique shortest rotation: the half turn is then taken
// around chain.Perpendicular(oldDir).
func deltaRotation(oldDir, newDir mgl64.Vec3) mgl64.Quat {
	cos := mgl64.Clamp(oldDir.Dot(newDir), -1, 1)
	axis := oldDir.Cross(newDir)
	axisLength := axis.Len()

	if chain.IsNearlyZero(axisLength) {
		if cos > 0 {
			return mgl64.QuatIdent()
		}
		return mgl64.QuatRotate(math.Pi, chain.Perpendicular(oldDir))
	}

	return mgl64.QuatRotate(math.Acos(cos), axis.Mul(1.0/axisLength))
}

// updateParentRotation rotates the parent joint by the rotation its bone went through
func updateParentRotation(newParent *chain.Transform, oldParent, newChild, oldChild chain.Transform) {
	oldDir, okOld := chain.Direction(oldParent.Position, oldChild.Position)
	newDir, okNew := chain.Direction(newParent.Position, newChild.Position)
	if !okOld || !okNew {
		newParent.Rotation = oldParent.Rotation
		return
	}

	newParent.Rotation = deltaRotation(oldDir, newDir).Mul(oldParent.Rotation).Normalize()
}

// updateRotations propagates the joint displacements into the joint orientations
func updateRotations(input chain.Chain, lengths []float64, working chain.Chain) {
	for i := 0; i < len(working)-1; i++ {
		if chain.IsNearlyZero(lengths[i+1]) {
			continue
		}

		updateParentRotation(&working[i], input[i], working[i+1], input[i+1])
	}
}
