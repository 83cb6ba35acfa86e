package source

import (
	"context"

	"github.com/hookflow/hookflow/pkg/protocol"
)

// SourceNodeFactory creates SourceNode instances.
type SourceNodeFactory struct{}

func (f *SourceNodeFactory) Create(_ context.Context, nodeID string, _ map[string]any) (protocol.Executor, error) {
	return NewSourceNode(nodeID), nil
}

func (f *SourceNodeFactory) ID() string {
	return "source"
}

func (f *SourceNodeFactory) Name() string {
	return "Source"
}

func (f *SourceNodeFactory) Description() string {
	return "Flow entry point; passes the inbound payload through unchanged"
}

func (f *SourceNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"payload_schema": map[string]any{
				"type":        "object",
				"description": "Optional JSON schema inbound payloads must satisfy before a run starts.",
			},
		},
	}
}

func NewSourceNodeFactory() protocol.ExecutorFactory {
	return &SourceNodeFactory{}
}
