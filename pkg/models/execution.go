package models

import (
	"encoding/json"
	"time"
)

// ExecutionStatus represents the lifecycle state of one engine run.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// StepStatus represents the state of a single node execution within a run.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// ExecutionStep records one node visit during a run. Steps are append-only:
// once completed or failed, a step is never rewritten.
type ExecutionStep struct {
	NodeID      string     `json:"node_id"`
	NodeKind    NodeKind   `json:"node_kind"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Input       any        `json:"input,omitempty"`
	Output      any        `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Execution is the durable record of one run, keyed by execution id.
// NodeExecutions holds the serialized step list.
type Execution struct {
	ID             string          `json:"id"`
	FlowID         string          `json:"flow_id"  validate:"required"`
	EventID        string          `json:"event_id" validate:"required"`
	Status         ExecutionStatus `json:"status"   validate:"required,oneof=pending running completed failed"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	DurationMS     *int64          `json:"duration,omitempty"`
	NodeExecutions string          `json:"node_executions,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// ExecutionContext is the ephemeral per-run state threaded through the
// graph. CurrentData is reassigned only by transform node results.
type ExecutionContext struct {
	ExecutionID string          `json:"execution_id"`
	FlowID      string          `json:"flow_id"`
	EventID     string          `json:"event_id"`
	InputData   any             `json:"input_data"`
	CurrentData any             `json:"current_data"`
	Steps       []ExecutionStep `json:"steps"`
}

// ExecutionResult is what the engine returns for one run. Steps already
// recorded are present even when the run failed part-way.
type ExecutionResult struct {
	Success bool            `json:"success"`
	Output  any             `json:"output"`
	Steps   []ExecutionStep `json:"steps"`
	Error   string          `json:"error,omitempty"`
}

// SerializeSteps encodes a step list to the persisted JSON string form.
func SerializeSteps(steps []ExecutionStep) (string, error) {
	data, err := json.Marshal(steps)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ParseSteps decodes the persisted JSON string form of a step list.
func ParseSteps(raw string) ([]ExecutionStep, error) {
	if raw == "" {
		return []ExecutionStep{}, nil
	}

	var steps []ExecutionStep
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, err
	}

	return steps, nil
}
