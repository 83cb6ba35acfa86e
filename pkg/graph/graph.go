// Package graph provides the in-memory lookup model for a flow's nodes and
// edges. It is pure data: traversal semantics live in the engine.
package graph

import (
	"errors"

	"github.com/hookflow/hookflow/pkg/models"
)

// ErrNoSourceNode indicates a flow has no source node and cannot be executed.
var ErrNoSourceNode = errors.New("no source node found in flow")

// Graph indexes a flow's node and edge lists for execution-time lookup.
type Graph struct {
	nodes    []models.FlowNode
	edges    []models.FlowEdge
	byID     map[string]*models.FlowNode
	outgoing map[string][]models.FlowEdge
}

// New builds a graph from a flow's node and edge lists. Edges referencing
// unknown nodes are kept; the engine skips them at traversal time.
func New(nodes []models.FlowNode, edges []models.FlowEdge) *Graph {
	g := &Graph{
		nodes:    nodes,
		edges:    edges,
		byID:     make(map[string]*models.FlowNode, len(nodes)),
		outgoing: make(map[string][]models.FlowEdge),
	}

	for i := range nodes {
		g.byID[nodes[i].ID] = &nodes[i]
	}

	for _, edge := range edges {
		g.outgoing[edge.SourceNodeID] = append(g.outgoing[edge.SourceNodeID], edge)
	}

	return g
}

// SourceNode returns the flow's source node. Flows must have exactly one
// source node; when several exist the first in node-list order wins, and
// when none exist ErrNoSourceNode is returned.
func (g *Graph) SourceNode() (*models.FlowNode, error) {
	for i := range g.nodes {
		if g.nodes[i].Kind == models.NodeKindSource {
			return &g.nodes[i], nil
		}
	}

	return nil, ErrNoSourceNode
}

// NodeByID returns the node with the given id, or nil when absent.
func (g *Graph) NodeByID(id string) *models.FlowNode {
	return g.byID[id]
}

// OutgoingEdges returns the edges leaving the given node in edge-list
// order. The slice is empty when the node has no outgoing edges.
func (g *Graph) OutgoingEdges(nodeID string) []models.FlowEdge {
	return g.outgoing[nodeID]
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}
