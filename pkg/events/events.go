// Package events defines event types and structures for flow lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every flow lifecycle event.
const Topic = "hookflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	EventReceivedEvent      EventType = "event.received"
	ExecutionRequestedEvent EventType = "execution.requested"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	FlowID    string         `json:"flow_id"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope for the given flow.
func NewBaseEvent(eventType EventType, flowID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		FlowID:    flowID,
	}
}

// EventReceived is emitted when a webhook delivery passes intake
// validation and an Event record exists.
type EventReceived struct {
	BaseEvent

	EventID   string `json:"event_id"`
	Source    string `json:"source"`
	EventKind string `json:"event_kind"`
}

func (e EventReceived) GetType() EventType {
	return EventReceivedEvent
}

// ExecutionRequested asks a worker to run a pending execution.
type ExecutionRequested struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	EventID     string `json:"event_id"`
}

func (e ExecutionRequested) GetType() EventType {
	return ExecutionRequestedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Result      any           `json:"result,omitempty"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
