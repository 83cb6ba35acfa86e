// Package protocol defines the contracts between the execution engine and
// node executors.
package protocol

import (
	"context"

	"github.com/hookflow/hookflow/pkg/models"
)

// Executor runs one node against the current execution state. It returns
// the node's output value; for transform nodes the engine threads that
// value into ExecutionContext.CurrentData, for source and destination
// nodes the output is recorded on the step only.
type Executor interface {
	// Execute runs the node. The executor must not mutate execCtx.
	Execute(ctx context.Context, execCtx *models.ExecutionContext) (any, error)

	// ID returns the node instance id this executor was created for.
	ID() string

	// Type returns the executor type identifier (e.g. "transform:script").
	Type() string
}

// ExecutorFactory creates executor instances and describes the node type.
type ExecutorFactory interface {
	// Create builds an executor for one node instance from its config.
	Create(ctx context.Context, nodeID string, config map[string]any) (Executor, error)

	// ID returns the unique identifier for this executor type.
	ID() string

	// Name returns the human-readable name for this executor type.
	Name() string

	// Description returns a description of what this executor does.
	Description() string

	// Schema returns the JSON schema for this executor's node config.
	Schema() map[string]any
}
