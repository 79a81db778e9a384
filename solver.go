// Package fabrik implements a range-limited FABRIK (Forward And Backward Reaching
// Inverse Kinematics) solver.
//
// Given a chain of joints and a target for its last joint (the effector), the
// solver alternates a forward pass from the effector to the root and a backward
// pass from the root to the effector, until the effector is within precision of
// the target or the iteration budget is spent:
//
//	repeat:
//	    effector := target
//	    forward pass   (joints N-2 .. 1, each constraint enforced after its child moved)
//	    root drag      (optional bounded displacement of the root)
//	    backward pass  (joints 1 .. N-1)
//	    slop := distance to target
//
// Bone lengths are read once from the input chain and never change. After the
// loop the terminal bone is snapped back to its length and the joint rotations
// are recomputed from the joint displacements.
package fabrik

import (
	"log/slog"
	"math"

	"github.com/akmonengine/fabrik/chain"
	"github.com/akmonengine/fabrik/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// Mode selects the convergence criterion of a solve
type Mode uint8

const (
	// OpenChain converges when the effector reaches the target
	OpenChain Mode = iota
	// ClosedLoop converges when the joint before the effector lies one terminal bone length away from the target
	ClosedLoop
)

func (m Mode) String() string {
	switch m {
	case OpenChain:
		return "open"
	case ClosedLoop:
		return "closed"
	default:
		return "unknown"
	}
}

// Result describes the outcome of a solve
type Result struct {
	// Chain is the solved chain. It never aliases the input chain.
	Chain chain.Chain
	// Changed is false when the chain was rejected or already on target
	Changed bool
	// Converged is true when the final slop is within precision
	Converged    bool
	Iterations   int
	Slop         float64
	MaximumReach float64
}

// Solver runs solves with shared settings.
// Logger and Events are optional; a Solver with Events must not be used concurrently.
type Solver struct {
	Settings Settings
	Logger   *slog.Logger
	Events   *Events
}

// NewSolver creates a solver logging nowhere
func NewSolver(settings Settings) *Solver {
	return &Solver{Settings: settings}
}

// SolveOpenChain moves the chain so that its effector reaches target.
// The returned chain is a copy of input, whether or not it changed.
func SolveOpenChain(input chain.Chain, constraints constraint.Table, target mgl64.Vec3, settings Settings, owner any) (chain.Chain, bool) {
	result := NewSolver(settings).SolveOpenChain(input, constraints, target, owner)
	return result.Chain, result.Changed
}

// SolveClosedLoop moves the chain so that the joint before its effector lies
// one terminal bone length away from target.
func SolveClosedLoop(input chain.Chain, constraints constraint.Table, target mgl64.Vec3, settings Settings, owner any) (chain.Chain, bool) {
	result := NewSolver(settings).SolveClosedLoop(input, constraints, target, owner)
	return result.Chain, result.Changed
}

func (s *Solver) SolveOpenChain(input chain.Chain, constraints constraint.Table, target mgl64.Vec3, owner any) Result {
	return s.Solve(OpenChain, input, constraints, target, owner)
}

func (s *Solver) SolveClosedLoop(input chain.Chain, constraints constraint.Table, target mgl64.Vec3, owner any) Result {
	return s.Solve(ClosedLoop, input, constraints, target, owner)
}

// Solve runs the FABRIK iterations on a copy of input.
// constraints[j] governs joint j+1 relative to joint j, missing entries being unconstrained.
// owner is handed untouched to the constraints.
func (s *Solver) Solve(mode Mode, input chain.Chain, constraints constraint.Table, target mgl64.Vec3, owner any) Result {
	logger := s.logger()
	working := input.Clone()
	result := Result{Chain: working}

	if len(input) < 2 {
		// Need at least one bone to do IK
		logger.Debug("fabrik chain rejected", "joints", len(input))
		s.emit(ChainRejectedEvent{Owner: owner, Joints: len(input)})
		return result
	}

	lengths, maximumReach := chain.ComputeBoneLengths(input)
	result.MaximumReach = maximumReach
	effectorIndex := working.EffectorIndex()
	settings := s.Settings

	slop := working[effectorIndex].Position.Sub(target).Len()
	if slop <= settings.Precision {
		result.Slop = slop
		result.Converged = true
		logger.Debug("fabrik target already reached", "slop", slop)
		s.emit(TargetReachedEvent{Owner: owner, Slop: slop})
		return result
	}

	// Set the effector at the target
	working[effectorIndex].Position = target

	iterations := 0
	for slop > settings.Precision && iterations < settings.MaxIterations {
		iterations++

		// The backward pass moves the effector, every forward pass reaches from the target
		working[effectorIndex].Position = target
		forwardPass(input, constraints, lengths, working, owner)
		dragRoot(input, settings.MaxRootDragDistance, settings.RootDragStiffness, lengths, working)
		backwardPass(input, constraints, lengths, working, owner)

		slop = measureSlop(mode, working, lengths, target)
		logger.Debug("fabrik iteration", "mode", mode, "iteration", iterations, "slop", slop)
	}

	// Place the effector based on how close we got to the target
	parent := working[effectorIndex-1].Position
	working[effectorIndex].Position = reach(parent, working[effectorIndex].Position, lengths[effectorIndex],
		input[effectorIndex-1].Position, input[effectorIndex].Position)

	updateRotations(input, lengths, working)

	result.Changed = true
	result.Iterations = iterations
	result.Slop = slop
	result.Converged = slop <= settings.Precision

	logger.Debug("fabrik solved",
		"mode", mode,
		"joints", len(input),
		"iterations", iterations,
		"slop", slop,
		"converged", result.Converged,
		"maximum_reach", maximumReach)

	if result.Converged {
		s.emit(SolveConvergedEvent{Owner: owner, Mode: mode, Iterations: iterations, Slop: slop})
	} else {
		s.emit(SolveExhaustedEvent{Owner: owner, Mode: mode, Iterations: iterations, Slop: slop})
	}

	return result
}

// measureSlop returns the convergence error of the working chain
func measureSlop(mode Mode, working chain.Chain, lengths []float64, target mgl64.Vec3) float64 {
	effectorIndex := working.EffectorIndex()

	if mode == ClosedLoop {
		distance := working[effectorIndex-1].Position.Sub(target).Len()
		return math.Abs(lengths[effectorIndex] - distance)
	}

	return working[effectorIndex].Position.Sub(target).Len()
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Solver) emit(event Event) {
	if s.Events == nil {
		return
	}

	s.Events.emit(event)
	s.Events.flush()
}
