package transform

import (
	"context"

	"github.com/hookflow/hookflow/pkg/protocol"
)

// TransformNodeFactory creates script TransformNode instances.
type TransformNodeFactory struct{}

func (f *TransformNodeFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Executor, error) {
	return NewTransformNode(nodeID, config)
}

func (f *TransformNodeFactory) ID() string {
	return "transform:script"
}

func (f *TransformNodeFactory) Name() string {
	return "Script Transform"
}

func (f *TransformNodeFactory) Description() string {
	return "Transforms the current data with a sandboxed expression; the result becomes the new current data"
}

func (f *TransformNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"script": map[string]any{
				"type":        "string",
				"description": "Expression evaluated with the current data bound to `data`.",
				"examples": []string{
					`{"order_id": data.id, "total": data.amount * 100}`,
					`data.items`,
					`merge(data, {"transformed": true})`,
				},
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Evaluation timeout in seconds (default 5).",
			},
		},
		"required": []string{"script"},
	}
}

func NewTransformNodeFactory() protocol.ExecutorFactory {
	return &TransformNodeFactory{}
}
