// Package source provides the passthrough executor for flow entry nodes.
package source

import (
	"context"

	"github.com/hookflow/hookflow/pkg/models"
)

// SourceNode is the identity executor: the run's current data passes
// through unchanged. It always succeeds.
type SourceNode struct {
	id string
}

func NewSourceNode(id string) *SourceNode {
	return &SourceNode{id: id}
}

func (n *SourceNode) ID() string {
	return n.id
}

func (n *SourceNode) Type() string {
	return "source"
}

func (n *SourceNode) Execute(_ context.Context, execCtx *models.ExecutionContext) (any, error) {
	return execCtx.CurrentData, nil
}
