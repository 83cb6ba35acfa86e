package aitransform

import (
	"context"

	"github.com/hookflow/hookflow/pkg/protocol"
)

// AITransformNodeFactory creates AITransformNode instances sharing one
// completion service configuration.
type AITransformNodeFactory struct {
	clientConfig ClientConfig
}

func (f *AITransformNodeFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Executor, error) {
	return NewAITransformNode(nodeID, config, f.clientConfig)
}

func (f *AITransformNodeFactory) ID() string {
	return "transform:ai"
}

func (f *AITransformNodeFactory) Name() string {
	return "AI Transform"
}

func (f *AITransformNodeFactory) Description() string {
	return "Sends a prompt plus the current data to a text-completion service and uses the JSON reply as the new current data"
}

func (f *AITransformNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Instruction sent alongside the serialized current data.",
			},
			"model": map[string]any{
				"type":        "string",
				"description": "Completion model identifier (service default when omitted).",
			},
		},
		"required": []string{"prompt"},
	}
}

func NewAITransformNodeFactory(clientConfig ClientConfig) protocol.ExecutorFactory {
	return &AITransformNodeFactory{clientConfig: clientConfig}
}
