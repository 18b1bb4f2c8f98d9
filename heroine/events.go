package heroine

// Event names the push-only notifications the engine sends to its host
// (spec §6.1/§6.3). Events never block engine progress: On registers a
// handler invoked synchronously from whichever goroutine produced the
// event, so a slow handler should hand off work itself rather than
// block the tick or render loop.
type Event string

const (
	EventSimulationTick      Event = "simulation:tick"
	EventSimulationEnd       Event = "simulation:end"
	EventSimulationDiverged  Event = "simulation:diverged"
	EventGraphLoaded         Event = "graph:loaded"
	EventViewportChanged     Event = "viewport:changed"
	EventError               Event = "error"
)

// EventHandler receives an event's payload: float32 alpha for
// simulation:tick, error for simulation:diverged/error,
// struct{ Nodes, Edges int } (the kept counts) for graph:loaded, nil
// otherwise.
type EventHandler func(payload any)

// On registers handler for event, replacing any previously registered
// handler.
func (e *engine) On(event Event, handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[event] = handler
}

// Off removes the handler registered for event, if any.
func (e *engine) Off(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handlers, event)
}
