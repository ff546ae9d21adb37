package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types pushed by the drill engine.
const (
	// TypeErrorCountChanged carries an ErrorCountPayload after every recorded answer.
	TypeErrorCountChanged = "error_count_changed"

	// TypeProgressChanged carries a ProgressPayload after a correct answer in a tier session.
	TypeProgressChanged = "progress_changed"

	// TypeErrorQueueCleared is emitted once when an error-correction session answers
	// its last flagged word correctly. It carries an ErrorCountPayload with count zero.
	TypeErrorQueueCleared = "error_queue_cleared"
)

// Event is a notification emitted by the engine for observers such as a
// progress badge. Payload holds the type-specific data serialized as JSON.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// ErrorCountPayload reports the number of words currently flagged as wrong.
type ErrorCountPayload struct {
	Count int `json:"count"`
}

// ProgressPayload reports a tier's progress after it changed.
type ProgressPayload struct {
	Tier      string `json:"tier"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts an ordinary function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
