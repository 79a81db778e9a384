package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/akmonengine/fabrik"
	"github.com/akmonengine/fabrik/chain"
	"github.com/akmonengine/fabrik/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("invalid scene")

// Scene is the YAML description of one solve
type Scene struct {
	Mode        string           `yaml:"mode"`
	Target      []float64        `yaml:"target"`
	Joints      []JointSpec      `yaml:"joints"`
	Constraints []ConstraintSpec `yaml:"constraints"`
	Settings    fabrik.Settings  `yaml:"settings"`
}

// JointSpec is a joint of the input chain. Rotation is a quaternion as [w, x, y, z].
type JointSpec struct {
	Position []float64 `yaml:"position"`
	Rotation []float64 `yaml:"rotation,omitempty"`
}

// ConstraintSpec is the constraint of the bone ending at the joint of the same index plus one.
// Type is one of none, cone (MaxAngle in degrees) or hinge (Axis).
type ConstraintSpec struct {
	Type     string    `yaml:"type"`
	MaxAngle float64   `yaml:"max_angle,omitempty"`
	Axis     []float64 `yaml:"axis,omitempty"`
	Disabled bool      `yaml:"disabled,omitempty"`
}

// LoadScene reads a scene file, its settings block overriding base key by key
func LoadScene(path string, base fabrik.Settings) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	return ParseScene(data, base)
}

// ParseScene decodes and validates a YAML scene
func ParseScene(data []byte, base fabrik.Settings) (*Scene, error) {
	scene := &Scene{Mode: fabrik.OpenChain.String(), Settings: base}
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	if _, err := scene.SolveMode(); err != nil {
		return nil, err
	}
	if _, err := scene.TargetPosition(); err != nil {
		return nil, err
	}
	if _, err := scene.Chain(); err != nil {
		return nil, err
	}
	if _, err := scene.ConstraintTable(); err != nil {
		return nil, err
	}
	if err := scene.Settings.Validate(); err != nil {
		return nil, err
	}

	return scene, nil
}

func (s *Scene) SolveMode() (fabrik.Mode, error) {
	switch strings.ToLower(s.Mode) {
	case "", "open":
		return fabrik.OpenChain, nil
	case "closed":
		return fabrik.ClosedLoop, nil
	default:
		return fabrik.OpenChain, fmt.Errorf("%w: unknown mode %q", ErrInvalidScene, s.Mode)
	}
}

func (s *Scene) TargetPosition() (mgl64.Vec3, error) {
	target, err := toVec3(s.Target)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("%w: target: %v", ErrInvalidScene, err)
	}

	return target, nil
}

func (s *Scene) Chain() (chain.Chain, error) {
	c := make(chain.Chain, len(s.Joints))
	for i, joint := range s.Joints {
		position, err := toVec3(joint.Position)
		if err != nil {
			return nil, fmt.Errorf("%w: joint %d position: %v", ErrInvalidScene, i, err)
		}

		rotation := mgl64.QuatIdent()
		if len(joint.Rotation) > 0 {
			if len(joint.Rotation) != 4 {
				return nil, fmt.Errorf("%w: joint %d rotation: want [w, x, y, z], got %d values", ErrInvalidScene, i, len(joint.Rotation))
			}
			rotation = mgl64.Quat{W: joint.Rotation[0], V: mgl64.Vec3{joint.Rotation[1], joint.Rotation[2], joint.Rotation[3]}}
			if chain.IsNearlyZero(rotation.Len()) {
				return nil, fmt.Errorf("%w: joint %d rotation is a zero quaternion", ErrInvalidScene, i)
			}
			rotation = rotation.Normalize()
		}

		c[i] = chain.Transform{Position: position, Rotation: rotation}
	}

	return c, nil
}

func (s *Scene) ConstraintTable() (constraint.Table, error) {
	table := make(constraint.Table, len(s.Constraints))
	for i, spec := range s.Constraints {
		switch strings.ToLower(spec.Type) {
		case "", "none":
			table[i] = constraint.None()
		case "cone":
			if spec.MaxAngle < 0 {
				return nil, fmt.Errorf("%w: constraint %d: negative cone angle", ErrInvalidScene, i)
			}
			table[i] = constraint.Some(&constraint.Cone{
				MaxAngle: mgl64.DegToRad(spec.MaxAngle),
				Disabled: spec.Disabled,
			})
		case "hinge":
			axis, err := toVec3(spec.Axis)
			if err != nil {
				return nil, fmt.Errorf("%w: constraint %d axis: %v", ErrInvalidScene, i, err)
			}
			table[i] = constraint.Some(&constraint.Hinge{Axis: axis, Disabled: spec.Disabled})
		default:
			return nil, fmt.Errorf("%w: constraint %d: unknown type %q", ErrInvalidScene, i, spec.Type)
		}
	}

	return table, nil
}

func toVec3(values []float64) (mgl64.Vec3, error) {
	if len(values) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want [x, y, z], got %d values", len(values))
	}

	return mgl64.Vec3{values[0], values[1], values[2]}, nil
}
