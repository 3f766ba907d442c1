package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StageRequestedEvent represents a request to execute a generation stage
// in the background. It carries everything the task layer needs without
// a direct dependency on the task package.
type StageRequestedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the kind of background work being requested
	Type string `json:"type"`

	// Payload contains the work-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *StageRequestedEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewStageRequestedEvent creates an event of the given type, serializing
// the payload to JSON.
func NewStageRequestedEvent(eventType string, payload interface{}) (*StageRequestedEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &StageRequestedEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StageRequestedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of the
// registered handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *StageRequestedEvent) error
}
