package fabrik

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

func subscribeAll(events *Events, capture *eventCapture) {
	for _, eventType := range []EventType{CHAIN_REJECTED, TARGET_REACHED, SOLVE_CONVERGED, SOLVE_EXHAUSTED} {
		events.Subscribe(eventType, capture.capture)
	}
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(SOLVE_CONVERGED, capture.capture)

	if len(events.listeners[SOLVE_CONVERGED]) != 1 {
		t.Errorf("Expected 1 listener for SOLVE_CONVERGED, got %d", len(events.listeners[SOLVE_CONVERGED]))
	}
}

func TestEvents_SubscribeOnZeroValue(t *testing.T) {
	var events Events
	capture := &eventCapture{}

	events.Subscribe(SOLVE_EXHAUSTED, capture.capture)
	events.emit(SolveExhaustedEvent{})
	events.flush()

	if capture.count() != 1 {
		t.Errorf("Expected 1 event, got %d", capture.count())
	}
}

func TestEvents_FlushClearsBuffer(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(TARGET_REACHED, capture.capture)

	events.emit(TargetReachedEvent{Slop: 0.001})
	events.flush()
	events.flush()

	if capture.count() != 1 {
		t.Errorf("Expected 1 event after two flushes, got %d", capture.count())
	}
	if len(events.buffer) != 0 {
		t.Errorf("Expected empty buffer, got %d events", len(events.buffer))
	}
}

func TestEvents_OnlyMatchingListeners(t *testing.T) {
	events := NewEvents()
	converged := &eventCapture{}
	exhausted := &eventCapture{}
	events.Subscribe(SOLVE_CONVERGED, converged.capture)
	events.Subscribe(SOLVE_EXHAUSTED, exhausted.capture)

	events.emit(SolveConvergedEvent{Iterations: 2})
	events.flush()

	if converged.count() != 1 {
		t.Errorf("Expected 1 converged event, got %d", converged.count())
	}
	if exhausted.count() != 0 {
		t.Errorf("Expected no exhausted event, got %d", exhausted.count())
	}
}

// =============================================================================
// Solver Events Tests
// =============================================================================

func TestSolver_Events(t *testing.T) {
	tests := []struct {
		name     string
		input    func() []mgl64.Vec3
		target   mgl64.Vec3
		expected EventType
	}{
		{
			name:     "chain rejected",
			input:    func() []mgl64.Vec3 { return []mgl64.Vec3{{0, 0, 0}} },
			target:   mgl64.Vec3{1, 0, 0},
			expected: CHAIN_REJECTED,
		},
		{
			name:     "target reached",
			input:    func() []mgl64.Vec3 { return []mgl64.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}} },
			target:   mgl64.Vec3{1, 1, 0},
			expected: TARGET_REACHED,
		},
		{
			name:     "converged",
			input:    func() []mgl64.Vec3 { return []mgl64.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}} },
			target:   mgl64.Vec3{1.5, 0, 0},
			expected: SOLVE_CONVERGED,
		},
		{
			name:     "exhausted",
			input:    func() []mgl64.Vec3 { return []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}} },
			target:   mgl64.Vec3{1.5, 0, 0},
			expected: SOLVE_EXHAUSTED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &eventCapture{}
			solver := NewSolver(DefaultSettings())
			solver.Events = NewEvents()
			subscribeAll(solver.Events, capture)

			owner := "left arm"
			solver.SolveOpenChain(makeChain(tt.input()...), nil, tt.target, owner)

			if capture.count() != 1 {
				t.Fatalf("Expected 1 event, got %d", capture.count())
			}
			if !capture.hasEventType(tt.expected) {
				t.Errorf("Expected event type %d, got %d", tt.expected, capture.events[0].Type())
			}
		})
	}
}

func TestSolver_ConvergedEventCarriesOutcome(t *testing.T) {
	capture := &eventCapture{}
	solver := NewSolver(DefaultSettings())
	solver.Events = NewEvents()
	solver.Events.Subscribe(SOLVE_CONVERGED, capture.capture)

	result := solver.SolveClosedLoop(lShapedArm(), nil, mgl64.Vec3{1.5, 0, 0}, "owner")

	if capture.count() != 1 {
		t.Fatalf("Expected 1 event, got %d", capture.count())
	}
	event, ok := capture.events[0].(SolveConvergedEvent)
	if !ok {
		t.Fatalf("Expected SolveConvergedEvent, got %T", capture.events[0])
	}
	if event.Owner != "owner" || event.Mode != ClosedLoop {
		t.Errorf("event = %+v, want owner %q in closed loop mode", event, "owner")
	}
	if event.Iterations != result.Iterations || event.Slop != result.Slop {
		t.Errorf("event = %+v, want iterations %d and slop %v", event, result.Iterations, result.Slop)
	}
}
