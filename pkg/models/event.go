package models

import "time"

// EventStatus represents the processing state of an inbound event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
)

// Event is the durable record of one inbound webhook call, independent of
// how (or whether) it was processed. Payload and Headers are stored as JSON
// strings, matching the document shape.
type Event struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspace_id" validate:"required"`
	FlowID      string      `json:"flow_id"      validate:"required"`
	Source      string      `json:"source"`
	EventType   string      `json:"event_type"`
	Payload     string      `json:"payload"`
	Headers     string      `json:"headers"`
	ReceivedAt  time.Time   `json:"received_at"`
	Status      EventStatus `json:"status"       validate:"required,oneof=pending processed failed"`
}
