package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/fabrik"
	"github.com/akmonengine/fabrik/chain"
	"github.com/akmonengine/fabrik/constraint"
	"github.com/akmonengine/fabrik/pose"
	"github.com/go-gl/mathgl/mgl64"
)

// SolveDebugger instruments the solves of the scene
type SolveDebugger interface {
	DebugChain(label string, c chain.Chain)
	DebugEvent(event fabrik.Event)
}

// SimpleDebugger prints everything to stdout
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugChain(label string, c chain.Chain) {
	fmt.Printf("🦴 %s:\n", label)
	lengths, reach := chain.ComputeBoneLengths(c)
	for i, joint := range c {
		fmt.Printf("   Joint %d: position=%v bone=%.3f\n", i, joint.Position, lengths[i])
	}
	fmt.Printf("   Maximum reach: %.3f\n", reach)
}

func (d *SimpleDebugger) DebugEvent(event fabrik.Event) {
	switch e := event.(type) {
	case fabrik.SolveConvergedEvent:
		fmt.Printf("🎯 Converged in %d iterations (slop=%.6f)\n", e.Iterations, e.Slop)
	case fabrik.SolveExhaustedEvent:
		fmt.Printf("⚠️  Iteration budget spent after %d iterations (slop=%.6f)\n", e.Iterations, e.Slop)
	case fabrik.TargetReachedEvent:
		fmt.Printf("✅ Already on target (slop=%.6f)\n", e.Slop)
	case fabrik.ChainRejectedEvent:
		fmt.Printf("❌ Chain rejected: %d joints\n", e.Joints)
	}
}

// armBones are the skeleton bones making the IK chain: shoulder, elbow, wrist
var armBones = []int{1, 2, 3}

// SetupScene creates a character skeleton with an arm and its elbow and wrist limits
func SetupScene() (*pose.Skeleton, constraint.Table, *fabrik.Solver, SolveDebugger) {
	debugger := &SimpleDebugger{}

	skeleton, err := pose.NewSkeleton(
		[]int{pose.NoParent, 0, 1, 2, 3},
		[]chain.Transform{
			chain.At(mgl64.Vec3{0, 1.4, 0}),  // spine
			chain.At(mgl64.Vec3{0.2, 0, 0}),  // shoulder
			chain.At(mgl64.Vec3{0.3, 0, 0}),  // elbow
			chain.At(mgl64.Vec3{0.25, 0, 0}), // wrist
			chain.At(mgl64.Vec3{0.08, 0, 0}), // hand
		},
	)
	if err != nil {
		panic(err)
	}

	constraints := constraint.NewTable(
		nil,
		&constraint.Hinge{Axis: mgl64.Vec3{0, 0, 1}},   // the elbow only bends in the XY plane
		&constraint.Cone{MaxAngle: mgl64.DegToRad(60)}, // the wrist stays within 60 degrees of the forearm
	)

	settings := fabrik.DefaultSettings()
	settings.Precision = 0.001
	settings.MaxIterations = 20
	settings.MaxRootDragDistance = 0.05
	settings.RootDragStiffness = 2

	solver := fabrik.NewSolver(settings)
	solver.Events = fabrik.NewEvents()
	for _, eventType := range []fabrik.EventType{fabrik.TARGET_REACHED, fabrik.SOLVE_CONVERGED, fabrik.SOLVE_EXHAUSTED} {
		solver.Events.Subscribe(eventType, debugger.DebugEvent)
	}

	return skeleton, constraints, solver, debugger
}

// ReachCircle makes the wrist follow a target moving on a circle in front of the character
func ReachCircle() {
	fmt.Println("🧪 Arm reaching a moving target")
	fmt.Println("===============================")

	skeleton, constraints, solver, debugger := SetupScene()

	const frames = 8
	for frame := 0; frame < frames; frame++ {
		angle := 2 * math.Pi * float64(frame) / frames
		target := mgl64.Vec3{0.55 + 0.15*math.Cos(angle), 1.4 + 0.15*math.Sin(angle), 0}

		fmt.Printf("--- FRAME %d ---\n", frame+1)
		fmt.Printf("Target: %v\n", target)

		input, err := skeleton.Chain(armBones)
		if err != nil {
			panic(err)
		}
		debugger.DebugChain("Before", input)

		result := solver.SolveOpenChain(input, constraints, target, skeleton)
		if result.Changed {
			if err := skeleton.ApplyChain(armBones, result.Chain); err != nil {
				panic(err)
			}
		}

		hand, _ := skeleton.WorldLocation(4)
		debugger.DebugChain("After", result.Chain)
		fmt.Printf("Hand: %v\n", hand)
		fmt.Println()
	}

	fmt.Println("Done!")
}

func main() {
	ReachCircle()
}
