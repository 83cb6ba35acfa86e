// Package models defines the core domain models for webhook-driven flow execution.
package models

import "time"

// FlowStatus represents the lifecycle state of a flow.
type FlowStatus string

const (
	FlowStatusActive FlowStatus = "active" // Receiving events and executing
	FlowStatusPaused FlowStatus = "paused" // Defined but rejecting events
	FlowStatusDraft  FlowStatus = "draft"  // Being edited, never executable
)

// Flow is the stored definition of one event route. Nodes and Edges are kept
// as JSON strings, matching the document shape the dashboard writes.
type Flow struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id" validate:"required"`
	Name        string     `json:"name"         validate:"required,min=3"`
	Status      FlowStatus `json:"status"       validate:"required,oneof=active paused draft"`
	WebhookID   string     `json:"webhook_id"   validate:"required"`
	Nodes       string     `json:"nodes"`
	Edges       string     `json:"edges"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActive reports whether the flow accepts inbound events.
func (f *Flow) IsActive() bool {
	return f.Status == FlowStatusActive
}

// Graph decodes the stored node and edge documents.
func (f *Flow) Graph() ([]FlowNode, []FlowEdge, error) {
	nodes, err := ParseNodes(f.Nodes)
	if err != nil {
		return nil, nil, err
	}

	edges, err := ParseEdges(f.Edges)
	if err != nil {
		return nil, nil, err
	}

	return nodes, edges, nil
}
