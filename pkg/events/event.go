package events

import (
	"context"
	"time"
)

const (
	// ReminderDue is emitted once per (event, lead-time bucket).
	ReminderDue = "REMINDER_DUE"
	// SessionArchived is emitted after a conversation is summarized into history.
	SessionArchived = "SESSION_ARCHIVED"
)

// SubjectPrefix namespaces every event subject on the bus.
const SubjectPrefix = "events."

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "REMINDER_DUE").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

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

// Subject is the bus subject an event type is published on.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// Handler processes one delivered event. Returning an error asks for redelivery.
type Handler func(ctx context.Context, event Event) error

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Subscriber interface {
	// Subscribe attaches handler to one subject with a durable consumer name.
	Subscribe(subject string, durableName string, handler Handler) error
}
