package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/persistence/file"
)

func newStore(t *testing.T) *file.Persistence {
	t.Helper()

	return file.NewPersistence(t.TempDir())
}

func TestFlowRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	flow := &models.Flow{
		ID:          "flow-1",
		WorkspaceID: "ws-1",
		Name:        "Order Events",
		Status:      models.FlowStatusActive,
		WebhookID:   "wh-abc",
		Nodes:       "[]",
		Edges:       "[]",
	}

	require.NoError(t, store.SaveFlow(ctx, flow))

	got, err := store.FlowByID(ctx, "flow-1")
	require.NoError(t, err)
	assert.Equal(t, "Order Events", got.Name)
	assert.Equal(t, models.FlowStatusActive, got.Status)

	byWebhook, err := store.FlowByWebhookID(ctx, "wh-abc")
	require.NoError(t, err)
	assert.Equal(t, "flow-1", byWebhook.ID)
}

func TestSaveFlowRejectsInvalid(t *testing.T) {
	store := newStore(t)

	err := store.SaveFlow(context.Background(), &models.Flow{ID: "flow-1", Name: "x"})
	assert.Error(t, err, "flows missing required fields never reach disk")
}

func TestFlowNotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.FlowByID(ctx, "missing")
	assert.True(t, persistence.IsFlowNotFound(err))

	_, err = store.FlowByWebhookID(ctx, "missing")
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestUpdateEventFields(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	event := &models.Event{
		ID:          "evt-1",
		WorkspaceID: "ws-1",
		FlowID:      "flow-1",
		Source:      "webhook",
		EventType:   "order.created",
		Payload:     `{"a":1}`,
		ReceivedAt:  time.Now().UTC(),
		Status:      models.EventStatusPending,
	}

	require.NoError(t, store.CreateEvent(ctx, event))
	require.NoError(t, store.UpdateEvent(ctx, "evt-1", map[string]any{
		"status": string(models.EventStatusProcessed),
	}))

	got, err := store.EventByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusProcessed, got.Status)
	assert.Equal(t, `{"a":1}`, got.Payload, "untouched fields survive a partial update")
}

func TestUpdateEventNotFound(t *testing.T) {
	store := newStore(t)

	err := store.UpdateEvent(context.Background(), "missing", map[string]any{"status": "processed"})
	assert.True(t, persistence.IsEventNotFound(err))
}

func TestUpdateExecutionAcceptsAnyField(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	execution := &models.Execution{
		ID:        "exec-1",
		FlowID:    "flow-1",
		EventID:   "evt-1",
		Status:    models.ExecutionStatusPending,
		StartedAt: time.Now().UTC(),
	}

	require.NoError(t, store.CreateExecution(ctx, execution))

	err := store.UpdateExecution(ctx, "exec-1", map[string]any{
		"status":          string(models.ExecutionStatusCompleted),
		"not_a_column":    "ignored by the file store",
		"node_executions": "[]",
	})
	require.NoError(t, err, "file persistence tolerates unknown fields")

	got, err := store.ExecutionByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, got.Status)
}

func TestCreateExecutionRejectsDuplicateID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	execution := &models.Execution{
		ID: "exec-1", FlowID: "f", EventID: "e", Status: models.ExecutionStatusPending, StartedAt: time.Now().UTC(),
	}

	require.NoError(t, store.CreateExecution(ctx, execution))

	err := store.CreateExecution(ctx, execution)
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrDocumentAlreadyExists)
}

func TestPendingExecutions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateExecution(ctx, &models.Execution{
		ID: "exec-1", FlowID: "f", EventID: "e", Status: models.ExecutionStatusPending, StartedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.CreateExecution(ctx, &models.Execution{
		ID: "exec-2", FlowID: "f", EventID: "e", Status: models.ExecutionStatusCompleted, StartedAt: time.Now().UTC(),
	}))

	pending, err := store.PendingExecutions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "exec-1", pending[0].ID)
}

func TestHealthCheck(t *testing.T) {
	store := newStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))

	missing := file.NewPersistence("/nonexistent/hookflow-test-dir")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
