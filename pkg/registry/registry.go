// Package registry maps executor type identifiers to their factories.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hookflow/hookflow/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.ExecutorFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.ExecutorFactory),
	}
}

// RegisterExecutor makes an executor factory available by its type id.
func (r *Registry) RegisterExecutor(factory protocol.ExecutorFactory) {
	r.factories[factory.ID()] = factory
}

// CreateExecutor builds an executor for a node instance.
func (r *Registry) CreateExecutor(ctx context.Context, executorType, nodeID string, config map[string]any) (protocol.Executor, error) {
	factory, ok := r.factories[executorType]
	if !ok {
		return nil, fmt.Errorf("executor type %q not registered", executorType)
	}

	return factory.Create(ctx, nodeID, config)
}

// ExecutorTypes returns the registered executor type ids.
func (r *Registry) ExecutorTypes() []string {
	types := make([]string, 0, len(r.factories))
	for id := range r.factories {
		types = append(types, id)
	}

	return types
}

// HealthCheck reports whether the registry has executors registered.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.factories) == 0 {
		return "no executors registered", false
	}

	return fmt.Sprintf("%d executor types registered", len(r.factories)), true
}
