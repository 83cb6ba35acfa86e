package transform

import (
	"context"
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

func TestNewTransformNode(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"script": `{"doubled": data.value * 2}`,
	})
	require.NoError(t, err)

	assert.Equal(t, "t1", node.ID())
	assert.Equal(t, "transform:script", node.Type())
}

func TestNewTransformNode_MissingScript(t *testing.T) {
	_, err := NewTransformNode("t1", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "missing required field 'script'", err.Error())
}

func TestNewTransformNode_InvalidScript(t *testing.T) {
	_, err := NewTransformNode("t1", map[string]any{
		"script": `{"broken":`,
	})
	require.Error(t, err)

	var transformErr *TransformError
	assert.ErrorAs(t, err, &transformErr)
}

func TestTransformNode_Execute_BuildsNewObject(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"script": `{"doubled": data.value * 2}`,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), execContext(map[string]any{"value": 21}))
	require.NoError(t, err)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 42, result["doubled"])
}

func TestTransformNode_Execute_MergeExtendsData(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"script": `merge(data, {"transformed": true})`,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), execContext(map[string]any{"a": float64(1)}))
	require.NoError(t, err)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), result["a"])
	assert.Equal(t, true, result["transformed"])
}

func TestTransformNode_Execute_RuntimeError(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"script": `merge(data, data.missing)`,
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), execContext(map[string]any{"a": 1}))
	require.Error(t, err)

	var transformErr *TransformError
	assert.ErrorAs(t, err, &transformErr)
}

func TestTransformNode_Execute_Deterministic(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"script": `{"total": data.a + data.b}`,
	})
	require.NoError(t, err)

	first, err := node.Execute(context.Background(), execContext(map[string]any{"a": 1, "b": 2}))
	require.NoError(t, err)

	second, err := node.Execute(context.Background(), execContext(map[string]any{"a": 1, "b": 2}))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
