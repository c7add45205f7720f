package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "POEM_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a ready-made Event implementation for simple payloads.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewPoemGeneratedEvent is emitted after the generation stage completes so
// external listeners (gallery feeds, analytics) can react without coupling
// to the pipeline.
func NewPoemGeneratedEvent(sessionID, personaKey string, audio bool) Event {
	return BaseEvent{
		Type: "POEM_GENERATED",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"persona":    personaKey,
			"audio":      audio,
		},
		OccurredAt: time.Now(),
	}
}
