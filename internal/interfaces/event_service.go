package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	EventPipelineStateChanged EventType = "pipeline_state_changed"
	EventReportReady          EventType = "report_ready"
	EventAnalysisAttempt      EventType = "analysis_attempt"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
