package fabrik

import (
	"github.com/akmonengine/fabrik/chain"
	"github.com/akmonengine/fabrik/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// reach returns the point at distance length from anchor, in the direction of point.
// When point coincides with anchor, the rest direction from restAnchor to restPoint is used.
func reach(anchor, point mgl64.Vec3, length float64, restAnchor, restPoint mgl64.Vec3) mgl64.Vec3 {
	direction, ok := chain.Direction(anchor, point)
	if !ok {
		direction, ok = chain.Direction(restAnchor, restPoint)
		if !ok {
			return anchor
		}
	}

	return anchor.Add(direction.Mul(length))
}

// forwardPass reaches from the joint before the effector down to joint 1.
// Neither the root nor the effector are moved.
func forwardPass(input chain.Chain, constraints constraint.Table, lengths []float64, working chain.Chain, owner any) {
	effectorIndex := working.EffectorIndex()

	for i := effectorIndex - 1; i > 0; i-- {
		child := working[i+1].Position

		if chain.IsNearlyZero(lengths[i+1]) {
			working[i].Position = child
		} else {
			working[i].Position = reach(child, working[i].Position, lengths[i+1], input[i+1].Position, input[i].Position)
		}

		// Enforce the parent's constraint any time its child moves
		constraints.Apply(i-1, input, working, owner)
	}
}

// backwardPass reaches from joint 1 up to the effector, starting from the current root
func backwardPass(input chain.Chain, constraints constraint.Table, lengths []float64, working chain.Chain, owner any) {
	for i := 1; i < len(working); i++ {
		parent := working[i-1].Position

		if chain.IsNearlyZero(lengths[i]) {
			working[i].Position = parent
		} else {
			working[i].Position = reach(parent, working[i].Position, lengths[i], input[i-1].Position, input[i].Position)
		}

		constraints.Apply(i-1, input, working, owner)
	}
}

// dragRoot lets the root follow joint 1, by at most maxDragDistance from its input position
func dragRoot(input chain.Chain, maxDragDistance, stiffness float64, lengths []float64, working chain.Chain) {
	if maxDragDistance < RootDragThreshold {
		return
	}

	child := working[1].Position
	var target mgl64.Vec3
	if chain.IsNearlyZero(lengths[1]) {
		target = child
	} else {
		target = reach(child, working[0].Position, lengths[1], input[1].Position, input[0].Position)
	}

	// Stiffness pulls the root back toward its input position
	displacement := target.Sub(input[0].Position)
	if stiffness > StiffnessThreshold {
		displacement = displacement.Mul(1.0 / stiffness)
	}

	working[0].Position = input[0].Position.Add(clampLength(displacement, maxDragDistance))
}

// clampLength scales v down so that its length does not exceed maxLength
func clampLength(v mgl64.Vec3, maxLength float64) mgl64.Vec3 {
	length := v.Len()
	if length <= maxLength || chain.IsNearlyZero(length) {
		return v
	}

	return v.Mul(maxLength / length)
}
