package destination

import (
	"context"

	"github.com/hookflow/hookflow/pkg/protocol"
)

// DestinationNodeFactory creates DestinationNode instances.
type DestinationNodeFactory struct{}

func (f *DestinationNodeFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Executor, error) {
	return NewDestinationNode(nodeID, config)
}

func (f *DestinationNodeFactory) ID() string {
	return "destination"
}

func (f *DestinationNodeFactory) Name() string {
	return "Destination"
}

func (f *DestinationNodeFactory) Description() string {
	return "Delivers the current data to a webhook, Slack or Discord endpoint"
}

func (f *DestinationNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type": map[string]any{
				"type":        "string",
				"description": "Destination platform.",
				"enum":        []string{"webhook", "slack", "discord"},
			},
			"url": map[string]any{
				"type":        "string",
				"description": "Target webhook URL.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Summary line for chat destinations.",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds (default 30).",
			},
		},
		"required": []string{"type"},
	}
}

func NewDestinationNodeFactory() protocol.ExecutorFactory {
	return &DestinationNodeFactory{}
}
