// Package progress is the orchestrator's fire-and-forget telemetry side-channel.
// Consumers are optional: orchestration behavior never depends on a listener.
package progress

// Step identifies an orchestration state transition.
type Step string

const (
	// StepValidate precedes query classification.
	StepValidate Step = "validate"
	// StepSearchStart precedes one backend's search calls.
	StepSearchStart Step = "search_start"
	// StepSearchDone follows one backend's search calls.
	StepSearchDone Step = "search_done"
	// StepFilterDone follows filtering and merging.
	StepFilterDone Step = "filter_done"
	// StepSynthesize precedes answer generation.
	StepSynthesize Step = "synthesize"
	// StepDone marks the end of the orchestration.
	StepDone Step = "done"
)

// Event is a single progress notification.
type Event struct {
	Step    Step
	Message string
	Data    map[string]any
}

// Sink consumes progress events.
type Sink interface {
	Emit(e Event)
}

// Nop is a Sink that discards every event.
type Nop struct{}

// Emit discards the event.
func (Nop) Emit(Event) {}

// Func adapts a function to the Sink interface.
type Func func(e Event)

// Emit calls the wrapped function.
func (f Func) Emit(e Event) { f(e) }
