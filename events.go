package fabrik

const (
	CHAIN_REJECTED EventType = iota
	TARGET_REACHED
	SOLVE_CONVERGED
	SOLVE_EXHAUSTED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// ChainRejectedEvent is sent when the input chain has fewer than 2 joints
type ChainRejectedEvent struct {
	Owner  any
	Joints int
}

func (e ChainRejectedEvent) Type() EventType { return CHAIN_REJECTED }

// TargetReachedEvent is sent when the effector is already within precision of the target
type TargetReachedEvent struct {
	Owner any
	Slop  float64
}

func (e TargetReachedEvent) Type() EventType { return TARGET_REACHED }

// SolveConvergedEvent is sent when the slop fell within precision
type SolveConvergedEvent struct {
	Owner      any
	Mode       Mode
	Iterations int
	Slop       float64
}

func (e SolveConvergedEvent) Type() EventType { return SOLVE_CONVERGED }

// SolveExhaustedEvent is sent when the iteration budget ran out before convergence.
// The chain is still updated, with its terminal bone length restored.
type SolveExhaustedEvent struct {
	Owner      any
	Mode       Mode
	Iterations int
	Slop       float64
}

func (e SolveExhaustedEvent) Type() EventType { return SOLVE_EXHAUSTED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager. Not safe for concurrent use: give each concurrent solver its own.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() *Events {
	return &Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 4),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emit buffers an event until the next flush
func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
