package pose

import (
	"math"
	"testing"

	"github.com/akmonengine/fabrik"
	"github.com/akmonengine/fabrik/chain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newArm builds pelvis -> shoulder -> elbow -> hand -> finger
func newArm(t *testing.T) *Skeleton {
	t.Helper()

	skeleton, err := NewSkeleton(
		[]int{NoParent, 0, 1, 2, 3},
		[]chain.Transform{
			chain.At(mgl64.Vec3{0, 1, 0}),
			chain.At(mgl64.Vec3{0, 1, 0}),
			chain.At(mgl64.Vec3{0, 1, 0}),
			chain.At(mgl64.Vec3{1, 0, 0}),
			chain.At(mgl64.Vec3{0.2, 0, 0}),
		},
	)
	require.NoError(t, err)

	return skeleton
}

func assertVec3InDelta(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v, want %v", i, got, want)
	}
}

func TestNewSkeleton_Validate(t *testing.T) {
	tests := []struct {
		name    string
		parents []int
		local   []chain.Transform
	}{
		{"length mismatch", []int{NoParent}, []chain.Transform{chain.NewTransform(), chain.NewTransform()}},
		{"parent after child", []int{NoParent, 2, 0}, []chain.Transform{chain.NewTransform(), chain.NewTransform(), chain.NewTransform()}},
		{"self parent", []int{0}, []chain.Transform{chain.NewTransform()}},
		{"negative parent", []int{-3}, []chain.Transform{chain.NewTransform()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSkeleton(tt.parents, tt.local)
			assert.ErrorIs(t, err, ErrHierarchy)
		})
	}
}

func TestSkeleton_WorldTransform(t *testing.T) {
	skeleton := newArm(t)
	// Turn the elbow a quarter around Z: the hand now points up
	skeleton.Local[2].Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})

	hand, err := skeleton.WorldLocation(3)
	require.NoError(t, err)
	assertVec3InDelta(t, mgl64.Vec3{0, 4, 0}, hand, 1e-12)

	finger, err := skeleton.WorldTransform(4)
	require.NoError(t, err)
	assertVec3InDelta(t, mgl64.Vec3{0, 4.2, 0}, finger.Position, 1e-12)
	assert.True(t, finger.Rotation.OrientationEqualThreshold(skeleton.Local[2].Rotation, 1e-12))

	_, err = skeleton.WorldTransform(5)
	assert.ErrorIs(t, err, ErrBoneIndex)
	_, err = skeleton.WorldLocation(-1)
	assert.ErrorIs(t, err, ErrBoneIndex)
}

func TestSkeleton_RootTransform(t *testing.T) {
	skeleton := newArm(t)
	skeleton.Root = chain.Transform{
		Position: mgl64.Vec3{10, 0, 0},
		Rotation: mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}),
	}

	shoulder, err := skeleton.WorldLocation(1)
	require.NoError(t, err)
	assertVec3InDelta(t, mgl64.Vec3{10, -2, 0}, shoulder, 1e-12)
}

func TestSkeleton_Chain(t *testing.T) {
	skeleton := newArm(t)

	c, err := skeleton.Chain([]int{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, c, 3)
	assertVec3InDelta(t, mgl64.Vec3{0, 2, 0}, c[0].Position, 1e-12)
	assertVec3InDelta(t, mgl64.Vec3{0, 3, 0}, c[1].Position, 1e-12)
	assertVec3InDelta(t, mgl64.Vec3{1, 3, 0}, c[2].Position, 1e-12)

	_, err = skeleton.Chain([]int{1, 9})
	assert.ErrorIs(t, err, ErrBoneIndex)
}

func TestSkeleton_ApplyChainRoundTrip(t *testing.T) {
	skeleton := newArm(t)
	skeleton.Local[1].Rotation = mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})
	skeleton.Local[3].Rotation = mgl64.QuatRotate(-0.8, mgl64.Vec3{0, 1, 0})
	indices := []int{1, 2, 3}

	before := make([]chain.Transform, skeleton.Len())
	for i := range before {
		before[i], _ = skeleton.WorldTransform(i)
	}

	c, err := skeleton.Chain(indices)
	require.NoError(t, err)
	require.NoError(t, skeleton.ApplyChain(indices, c))

	for i := range before {
		after, err := skeleton.WorldTransform(i)
		require.NoError(t, err)
		assertVec3InDelta(t, before[i].Position, after.Position, 1e-12)
		assert.True(t, after.Rotation.OrientationEqualThreshold(before[i].Rotation, 1e-12), "bone %d rotation", i)
	}
}

func TestSkeleton_ApplyChainErrors(t *testing.T) {
	skeleton := newArm(t)
	c, err := skeleton.Chain([]int{1, 2})
	require.NoError(t, err)

	assert.ErrorIs(t, skeleton.ApplyChain([]int{1, 2, 3}, c), ErrLengthMismatch)
	assert.ErrorIs(t, skeleton.ApplyChain([]int{1, 7}, c), ErrBoneIndex)
}

func TestSkeleton_MalformedLiteralReturnsErrors(t *testing.T) {
	two := []chain.Transform{
		chain.At(mgl64.Vec3{0, 1, 0}),
		chain.At(mgl64.Vec3{0, 1, 0}),
	}

	tests := []struct {
		name     string
		skeleton *Skeleton
	}{
		{
			name:     "short parents",
			skeleton: &Skeleton{Parents: []int{NoParent}, Local: two, Root: chain.NewTransform()},
		},
		{
			name:     "self parent",
			skeleton: &Skeleton{Parents: []int{0, 0}, Local: two, Root: chain.NewTransform()},
		},
		{
			name:     "cycle",
			skeleton: &Skeleton{Parents: []int{1, 0}, Local: two, Root: chain.NewTransform()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.skeleton.WorldTransform(1)
			assert.ErrorIs(t, err, ErrHierarchy)

			_, err = tt.skeleton.WorldLocation(0)
			assert.ErrorIs(t, err, ErrHierarchy)

			_, err = tt.skeleton.Chain([]int{0, 1})
			assert.ErrorIs(t, err, ErrHierarchy)

			err = tt.skeleton.ApplyChain([]int{0, 1}, chain.Chain{chain.NewTransform(), chain.NewTransform()})
			assert.ErrorIs(t, err, ErrHierarchy)
		})
	}
}

func TestSkeleton_SolveArm(t *testing.T) {
	skeleton := newArm(t)
	indices := []int{1, 2, 3}
	target := mgl64.Vec3{1.2, 2.5, 0.4}

	input, err := skeleton.Chain(indices)
	require.NoError(t, err)

	solved, changed := fabrik.SolveOpenChain(input, nil, target, fabrik.DefaultSettings(), skeleton)
	require.True(t, changed)
	require.NoError(t, skeleton.ApplyChain(indices, solved))

	hand, err := skeleton.WorldLocation(3)
	require.NoError(t, err)
	assert.LessOrEqual(t, hand.Sub(target).Len(), fabrik.DefaultPrecision)

	// The finger follows the hand
	finger, err := skeleton.WorldLocation(4)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, finger.Sub(hand).Len(), 1e-9)

	// The pelvis is not part of the chain
	pelvis, err := skeleton.WorldLocation(0)
	require.NoError(t, err)
	assertVec3InDelta(t, mgl64.Vec3{0, 1, 0}, pelvis, 1e-12)
}
