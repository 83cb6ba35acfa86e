package cmd

import (
	"log/slog"
	"os"

	"github.com/hookflow/hookflow/pkg/nodes/aitransform"
	"github.com/hookflow/hookflow/pkg/nodes/destination"
	"github.com/hookflow/hookflow/pkg/nodes/source"
	"github.com/hookflow/hookflow/pkg/nodes/transform"
	"github.com/hookflow/hookflow/pkg/registry"
)

// NewRegistry builds the executor registry with every built-in node
// kind. The AI transform client reads its endpoint and credentials from
// the environment so flows never carry secrets.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterExecutor(source.NewSourceNodeFactory())
	reg.RegisterExecutor(transform.NewTransformNodeFactory())
	reg.RegisterExecutor(aitransform.NewAITransformNodeFactory(aitransform.ClientConfig{
		BaseURL: os.Getenv("AI_COMPLETION_URL"),
		APIKey:  os.Getenv("AI_API_KEY"),
	}))
	reg.RegisterExecutor(destination.NewDestinationNodeFactory())

	return reg
}
