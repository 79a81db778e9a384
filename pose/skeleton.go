// Package pose answers world-space queries on a hierarchical skeleton pose.
//
// It is the bridge between a skeletal pose, where every bone is expressed
// relative to its parent, and the solver, which works on world-space chains:
// Chain extracts the joints to solve, ApplyChain writes the solved joints back.
package pose

import (
	"errors"
	"fmt"

	"github.com/akmonengine/fabrik/chain"
	"github.com/go-gl/mathgl/mgl64"
)

// NoParent marks a root bone in Skeleton.Parents
const NoParent = -1

var (
	ErrBoneIndex      = errors.New("bone index out of range")
	ErrLengthMismatch = errors.New("chain length does not match bone indices")
	ErrHierarchy      = errors.New("invalid bone hierarchy")
)

// Skeleton is a pose: Local[i] is the transform of bone i relative to bone Parents[i].
// A parent always has a lower index than its children; every query checks it,
// since the fields can be set directly.
type Skeleton struct {
	Parents []int
	Local   []chain.Transform
	// Root places the whole skeleton in world space
	Root chain.Transform
}

// NewSkeleton creates a skeleton at the world origin
func NewSkeleton(parents []int, local []chain.Transform) (*Skeleton, error) {
	s := &Skeleton{
		Parents: parents,
		Local:   local,
		Root:    chain.NewTransform(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks that every bone has a transform and a parent declared before it
func (s *Skeleton) Validate() error {
	if len(s.Parents) != len(s.Local) {
		return fmt.Errorf("%w: %d parents for %d transforms", ErrHierarchy, len(s.Parents), len(s.Local))
	}
	for i, parent := range s.Parents {
		if parent != NoParent && (parent < 0 || parent >= i) {
			return fmt.Errorf("%w: bone %d has parent %d", ErrHierarchy, i, parent)
		}
	}

	return nil
}

// Len returns the number of bones
func (s *Skeleton) Len() int {
	return len(s.Local)
}

// WorldTransform returns the world-space transform of bone index
func (s *Skeleton) WorldTransform(index int) (chain.Transform, error) {
	if err := s.Validate(); err != nil {
		return chain.Transform{}, err
	}
	if index < 0 || index >= len(s.Local) {
		return chain.Transform{}, fmt.Errorf("%w: %d", ErrBoneIndex, index)
	}

	return s.worldTransform(index), nil
}

// WorldLocation returns the world-space position of bone index
func (s *Skeleton) WorldLocation(index int) (mgl64.Vec3, error) {
	transform, err := s.WorldTransform(index)
	if err != nil {
		return mgl64.Vec3{}, err
	}

	return transform.Position, nil
}

func (s *Skeleton) worldTransform(index int) chain.Transform {
	parent := s.Parents[index]
	if parent == NoParent {
		return s.Root.Compose(s.Local[index])
	}

	return s.worldTransform(parent).Compose(s.Local[index])
}

// Chain returns the world-space transforms of the given bones, in order
func (s *Skeleton) Chain(indices []int) (chain.Chain, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	c := make(chain.Chain, len(indices))
	for i, index := range indices {
		if index < 0 || index >= len(s.Local) {
			return nil, fmt.Errorf("%w: %d", ErrBoneIndex, index)
		}
		c[i] = s.worldTransform(index)
	}

	return c, nil
}

// ApplyChain sets the world-space transforms of the given bones from solved.
// Bones are written in order, so indices must list parents before their children.
// Bones outside of indices keep their local transform and follow their parents.
func (s *Skeleton) ApplyChain(indices []int, solved chain.Chain) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(indices) != len(solved) {
		return fmt.Errorf("%w: %d indices, %d joints", ErrLengthMismatch, len(indices), len(solved))
	}
	for _, index := range indices {
		if index < 0 || index >= len(s.Local) {
			return fmt.Errorf("%w: %d", ErrBoneIndex, index)
		}
	}

	for i, index := range indices {
		parentWorld := s.Root
		if parent := s.Parents[index]; parent != NoParent {
			parentWorld = s.worldTransform(parent)
		}
		s.Local[index] = parentWorld.Relative(solved[i])
	}

	return nil
}
