package chain

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a joint position and orientation in a shared reference frame
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// At creates a transform located at position, with an identity rotation
func At(position mgl64.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: mgl64.QuatIdent(),
	}
}

// Compose returns the transform of local expressed in the frame of t
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		Position: t.Position.Add(t.Rotation.Rotate(local.Position)),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
	}
}

// Relative returns world expressed in the frame of t, so that t.Compose(t.Relative(world)) == world
func (t Transform) Relative(world Transform) Transform {
	inverse := t.Rotation.Inverse()
	return Transform{
		Position: inverse.Rotate(world.Position.Sub(t.Position)),
		Rotation: inverse.Mul(world.Rotation).Normalize(),
	}
}
