package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/models"
)

func TestSourceNode(t *testing.T) {
	g := New([]models.FlowNode{
		{ID: "t1", Kind: models.NodeKindTransform},
		{ID: "s1", Kind: models.NodeKindSource},
		{ID: "d1", Kind: models.NodeKindDestination},
	}, nil)

	source, err := g.SourceNode()
	require.NoError(t, err)
	assert.Equal(t, "s1", source.ID)
}

func TestSourceNode_Missing(t *testing.T) {
	g := New([]models.FlowNode{
		{ID: "t1", Kind: models.NodeKindTransform},
	}, nil)

	_, err := g.SourceNode()
	assert.ErrorIs(t, err, ErrNoSourceNode)
}

func TestSourceNode_MultipleFirstWins(t *testing.T) {
	g := New([]models.FlowNode{
		{ID: "s1", Kind: models.NodeKindSource},
		{ID: "s2", Kind: models.NodeKindSource},
	}, nil)

	source, err := g.SourceNode()
	require.NoError(t, err)
	assert.Equal(t, "s1", source.ID)
}

func TestOutgoingEdges_PreservesOrder(t *testing.T) {
	g := New(
		[]models.FlowNode{{ID: "s1", Kind: models.NodeKindSource}},
		[]models.FlowEdge{
			{ID: "e2", SourceNodeID: "s1", TargetNodeID: "b"},
			{ID: "e1", SourceNodeID: "s1", TargetNodeID: "a"},
			{ID: "e3", SourceNodeID: "x", TargetNodeID: "y"},
		},
	)

	edges := g.OutgoingEdges("s1")
	require.Len(t, edges, 2)
	assert.Equal(t, "e2", edges[0].ID)
	assert.Equal(t, "e1", edges[1].ID)

	assert.Empty(t, g.OutgoingEdges("b"))
}

func TestNodeByID(t *testing.T) {
	g := New([]models.FlowNode{
		{ID: "s1", Kind: models.NodeKindSource},
	}, nil)

	require.NotNil(t, g.NodeByID("s1"))
	assert.Nil(t, g.NodeByID("missing"))
}
