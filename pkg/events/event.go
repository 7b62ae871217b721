package events

import "time"

// Event is anything published on the event bus.
type Event interface {
	// EventType is the dotted event name, e.g. "qa.answered".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// BaseEvent is the concrete Event used by producers and rebuilt by consumers.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
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
