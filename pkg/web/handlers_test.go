package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/dedup"
	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/lifecycle"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/notifier"
	"github.com/hookflow/hookflow/pkg/persistence/file"
	"github.com/hookflow/hookflow/pkg/web"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, eventbus.Event) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestApp(t *testing.T, deduper dedup.Deduper) (*fiber.App, *file.Persistence) {
	t.Helper()

	logger := testLogger()
	store := file.NewPersistence(t.TempDir())
	manager := lifecycle.NewManager(logger, store, nopPublisher{}, notifier.NewNotifier(logger, ""))

	app := fiber.New()
	web.NewWebhookHandlers(logger, manager, store, deduper, nil).Register(app)

	return app, store
}

func seedFlow(t *testing.T, store *file.Persistence, status models.FlowStatus) {
	t.Helper()

	nodes, err := models.SerializeNodes([]models.FlowNode{{ID: "s1", Kind: models.NodeKindSource}})
	require.NoError(t, err)

	require.NoError(t, store.SaveFlow(context.Background(), &models.Flow{
		ID:          "flow-1",
		WorkspaceID: "ws-1",
		Name:        "Order Events",
		Status:      status,
		WebhookID:   "wh-abc",
		Nodes:       nodes,
		Edges:       "[]",
	}))
}

func postWebhook(t *testing.T, app *fiber.App, webhookID, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/"+webhookID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return resp, decoded
}

func TestPostWebhookAccepted(t *testing.T) {
	app, store := setupTestApp(t, nil)
	seedFlow(t, store, models.FlowStatusActive)

	resp, body := postWebhook(t, app, "wh-abc", `{"a":1}`, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "flow-1", body["flow_id"])
	assert.Equal(t, "Order Events", body["flow_name"])
	assert.NotEmpty(t, body["event_id"])
	assert.NotEmpty(t, body["execution_id"])
}

func TestPostWebhookUnknownFlow(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, body := postWebhook(t, app, "missing", `{}`, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Flow not found", body["error"])
}

func TestPostWebhookInactiveFlow(t *testing.T) {
	app, store := setupTestApp(t, nil)
	seedFlow(t, store, models.FlowStatusPaused)

	resp, body := postWebhook(t, app, "wh-abc", `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Flow is not active", body["error"])
	assert.Equal(t, "paused", body["status"])
}

func TestPostWebhookInvalidPayload(t *testing.T) {
	app, store := setupTestApp(t, nil)
	seedFlow(t, store, models.FlowStatusActive)

	resp, body := postWebhook(t, app, "wh-abc", `not json`, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid payload", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestPostWebhookDuplicateDelivery(t *testing.T) {
	deduper := dedup.NewMemoryDeduper(time.Minute)
	app, store := setupTestApp(t, deduper)
	seedFlow(t, store, models.FlowStatusActive)

	headers := map[string]string{"X-Delivery-ID": "delivery-1"}

	_, first := postWebhook(t, app, "wh-abc", `{"a":1}`, headers)
	resp, second := postWebhook(t, app, "wh-abc", `{"a":1}`, headers)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first["event_id"], second["event_id"], "retries see the original ids")
	assert.Equal(t, first["execution_id"], second["execution_id"])

	pending, err := store.PendingExecutions(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1, "duplicate deliveries start no second run")
}

func TestPostWebhookRejectedDeliveryRetries(t *testing.T) {
	deduper := dedup.NewMemoryDeduper(time.Minute)
	app, store := setupTestApp(t, deduper)

	headers := map[string]string{"X-Delivery-ID": "delivery-1"}

	// First attempt arrives before the flow exists and is rejected.
	resp, body := postWebhook(t, app, "wh-abc", `{"a":1}`, headers)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Flow not found", body["error"])

	seedFlow(t, store, models.FlowStatusActive)

	// The retry of a never-accepted delivery is processed fresh, not
	// answered as a duplicate of the rejection.
	resp, body = postWebhook(t, app, "wh-abc", `{"a":1}`, headers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["execution_id"])

	pending, err := store.PendingExecutions(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestHealth(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
