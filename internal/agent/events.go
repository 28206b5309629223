package agent

import "time"

// EventType classifies evaluator lifecycle events.
type EventType int

const (
	EventRunStart   EventType = iota // evaluation begins
	EventStageStart                  // entering a stage
	EventStageInfo                   // stage detail payload (readings, capacities)
	EventLogged                      // a decision log entry was appended
	EventRunEnd                      // evaluation finished
)

// Event carries data about an evaluator lifecycle event. Presentation
// adapters (console renderer, TUI) consume the same event stream so the
// evaluation logic exists exactly once.
type Event struct {
	Type     EventType
	Time     time.Time
	Stage    Stage
	Message  string         // human-readable stage message
	Fields   map[string]any // stage-specific details (condition readings, capacities)
	Entry    *LogEntry      // for EventLogged
	Decision *Decision      // for EventRunEnd
}

// EventHandler is a callback that receives evaluator events. Handlers
// run synchronously on the evaluating goroutine.
type EventHandler func(Event)
