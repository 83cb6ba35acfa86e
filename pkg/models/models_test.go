package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_Validation_ValidFlow(t *testing.T) {
	flow := &Flow{
		ID:          "flow-123",
		WorkspaceID: "ws-456",
		Name:        "Order events",
		Status:      FlowStatusActive,
		WebhookID:   "wh-789",
	}

	assert.NoError(t, Validate(flow))
}

func TestFlow_Validation_MissingWorkspace(t *testing.T) {
	flow := &Flow{
		ID:        "flow-123",
		Name:      "Order events",
		Status:    FlowStatusActive,
		WebhookID: "wh-789",
	}

	assert.Error(t, Validate(flow))
}

func TestFlow_Validation_InvalidStatus(t *testing.T) {
	flow := &Flow{
		ID:          "flow-123",
		WorkspaceID: "ws-456",
		Name:        "Order events",
		Status:      FlowStatus("archived"),
		WebhookID:   "wh-789",
	}

	assert.Error(t, Validate(flow))
}

func TestFlow_IsActive(t *testing.T) {
	flow := &Flow{Status: FlowStatusActive}
	assert.True(t, flow.IsActive())

	flow.Status = FlowStatusPaused
	assert.False(t, flow.IsActive())

	flow.Status = FlowStatusDraft
	assert.False(t, flow.IsActive())
}

func TestFlow_Graph_DecodesStoredStrings(t *testing.T) {
	flow := &Flow{
		Nodes: `[{"id":"s1","kind":"source","config":{}},{"id":"t1","kind":"transform","config":{"type":"script"}}]`,
		Edges: `[{"id":"e1","source_node_id":"s1","target_node_id":"t1"}]`,
	}

	nodes, edges, err := flow.Graph()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Len(t, edges, 1)

	assert.Equal(t, NodeKindSource, nodes[0].Kind)
	assert.Equal(t, "script", nodes[1].ConfigString("type", ""))
	assert.Equal(t, "s1", edges[0].SourceNodeID)
	assert.Equal(t, "t1", edges[0].TargetNodeID)
}

func TestFlow_Graph_InvalidNodesJSON(t *testing.T) {
	flow := &Flow{Nodes: `{not json`}

	_, _, err := flow.Graph()
	assert.Error(t, err)
}

func TestParseNodes_Empty(t *testing.T) {
	nodes, err := ParseNodes("")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestFlowNode_ConfigString_Fallback(t *testing.T) {
	node := FlowNode{Config: map[string]any{"type": "slack", "count": 3}}

	assert.Equal(t, "slack", node.ConfigString("type", "webhook"))
	assert.Equal(t, "webhook", node.ConfigString("missing", "webhook"))
	assert.Equal(t, "webhook", node.ConfigString("count", "webhook"))
}

func TestFlowNode_PayloadSchema(t *testing.T) {
	node := FlowNode{Config: map[string]any{
		"payload_schema": map[string]any{"type": "object"},
	}}

	schema := node.PayloadSchema()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])

	bare := FlowNode{Config: map[string]any{}}
	assert.Nil(t, bare.PayloadSchema())
}

func TestSerializeSteps_RoundTrip(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	steps := []ExecutionStep{
		{
			NodeID:      "s1",
			NodeKind:    NodeKindSource,
			Status:      StepStatusCompleted,
			StartedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			CompletedAt: &completed,
			Input:       map[string]any{"a": float64(1)},
			Output:      map[string]any{"a": float64(1)},
		},
		{
			NodeID:    "t1",
			NodeKind:  NodeKindTransform,
			Status:    StepStatusFailed,
			StartedAt: time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
			Input:     map[string]any{"a": float64(1)},
			Error:     "script evaluation failed",
		},
	}

	raw, err := SerializeSteps(steps)
	require.NoError(t, err)

	parsed, err := ParseSteps(raw)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	for i := range steps {
		assert.Equal(t, steps[i].NodeID, parsed[i].NodeID)
		assert.Equal(t, steps[i].Status, parsed[i].Status)
		assert.Equal(t, steps[i].Input, parsed[i].Input)
		assert.Equal(t, steps[i].Output, parsed[i].Output)
		assert.Equal(t, steps[i].Error, parsed[i].Error)
	}
}

func TestParseSteps_Empty(t *testing.T) {
	steps, err := ParseSteps("")
	require.NoError(t, err)
	assert.Empty(t, steps)
}
