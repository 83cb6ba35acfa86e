package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/nodes/source"
)

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_CreateExecutor(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterExecutor(source.NewSourceNodeFactory())

	executor, err := reg.CreateExecutor(context.Background(), "source", "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "s1", executor.ID())
	assert.Equal(t, "source", executor.Type())
}

func TestRegistry_CreateExecutor_Unregistered(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.CreateExecutor(context.Background(), "transform:script", "t1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_HealthCheck(t *testing.T) {
	reg := newTestRegistry()

	msg, ok := reg.HealthCheck()
	assert.False(t, ok)
	assert.Equal(t, "no executors registered", msg)

	reg.RegisterExecutor(source.NewSourceNodeFactory())

	_, ok = reg.HealthCheck()
	assert.True(t, ok)
	assert.Contains(t, reg.ExecutorTypes(), "source")
}
