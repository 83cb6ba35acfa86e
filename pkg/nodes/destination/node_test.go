package destination

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/models"
)

func execContext(data any) *models.ExecutionContext {
	return &models.ExecutionContext{
		ExecutionID: "exec-1",
		FlowID:      "flow-1",
		EventID:     "event-1",
		InputData:   data,
		CurrentData: data,
	}
}

func TestNewDestinationNode_MissingType(t *testing.T) {
	_, err := NewDestinationNode("d1", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "missing required field 'type'", err.Error())
}

func TestDestinationNode_Webhook_PostsCurrentData(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	node, err := NewDestinationNode("d1", map[string]any{
		"type": "webhook",
		"url":  server.URL,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), execContext(map[string]any{"a": float64(1)}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": float64(1)}, received)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, http.StatusOK, result["status"])
	assert.Equal(t, map[string]any{"ok": true}, result["response"])
}

func TestDestinationNode_Webhook_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	node, err := NewDestinationNode("d1", map[string]any{
		"type": "webhook",
		"url":  server.URL,
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), execContext(map[string]any{"a": 1}))
	require.Error(t, err)

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusInternalServerError, deliveryErr.StatusCode)
	assert.Contains(t, err.Error(), "Webhook returned 500")
}

func TestDestinationNode_Webhook_NotModifiedFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	node, err := NewDestinationNode("d1", map[string]any{
		"type": "webhook",
		"url":  server.URL,
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), execContext(map[string]any{"a": 1}))
	require.Error(t, err)

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusNotModified, deliveryErr.StatusCode)
}

func TestDestinationNode_Slack_Envelope(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	node, err := NewDestinationNode("d1", map[string]any{
		"type":    "slack",
		"url":     server.URL,
		"message": "Order processed",
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), execContext(map[string]any{"order": "o-1"}))
	require.NoError(t, err)

	assert.Equal(t, "Order processed", received["text"])

	blocks, ok := received["blocks"].([]any)
	require.True(t, ok)
	require.Len(t, blocks, 1)

	section, ok := blocks[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "section", section["type"])

	text, ok := section["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mrkdwn", text["type"])
	assert.Contains(t, text["text"], "```")
	assert.Contains(t, text["text"], `"order": "o-1"`)
}

func TestDestinationNode_Discord_Envelope(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	node, err := NewDestinationNode("d1", map[string]any{
		"type": "discord",
		"url":  server.URL,
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), execContext(map[string]any{"order": "o-1"}))
	require.NoError(t, err)

	embeds, ok := received["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)

	embed, ok := embeds[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, embed["description"], "```json")
	assert.Equal(t, float64(discordEmbedColor), embed["color"])
	assert.NotEmpty(t, embed["timestamp"])
}

func TestDestinationNode_UnknownType_SoftSkips(t *testing.T) {
	node, err := NewDestinationNode("d1", map[string]any{
		"type": "carrier-pigeon",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), execContext(map[string]any{"a": 1}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"skipped": true,
		"reason":  "Unknown destination type",
	}, output)
}

func TestDestinationNode_MissingURL(t *testing.T) {
	node, err := NewDestinationNode("d1", map[string]any{
		"type": "webhook",
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), execContext(nil))
	require.Error(t, err)

	var deliveryErr *DeliveryError
	assert.ErrorAs(t, err, &deliveryErr)
}
