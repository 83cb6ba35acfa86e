// Package engine walks a flow graph for one inbound event, threading the
// current data through transform nodes and recording one step per visit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hookflow/hookflow/pkg/graph"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/otelhelper"
	"github.com/hookflow/hookflow/pkg/registry"
)

// Surfaced on the result when a flow has no entry node. The run fails
// without retry; flows must carry exactly one source node.
const noSourceNodeMessage = "No source node found in flow"

type Engine struct {
	registry *registry.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewEngine(reg *registry.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		registry: reg,
		logger:   logger.With("module", "engine"),
		tracer:   otel.Tracer("github.com/hookflow/hookflow/pkg/engine"),
	}
}

// Execute runs one flow graph against one input payload. Traversal is a
// sequential depth-first walk from the source node, following outgoing
// edges in edge-list order. The first node failure halts the walk; steps
// recorded up to that point stay on the result.
func (e *Engine) Execute(
	ctx context.Context,
	nodes []models.FlowNode,
	edges []models.FlowEdge,
	executionID, flowID, eventID string,
	input any,
) *models.ExecutionResult {
	logger := e.logger.With("execution_id", executionID, "flow_id", flowID)
	logger.InfoContext(ctx, "Starting flow execution", "nodes", len(nodes), "edges", len(edges))

	execCtx := &models.ExecutionContext{
		ExecutionID: executionID,
		FlowID:      flowID,
		EventID:     eventID,
		InputData:   input,
		CurrentData: input,
		Steps:       []models.ExecutionStep{},
	}

	g := graph.New(nodes, edges)

	source, err := g.SourceNode()
	if err != nil {
		logger.ErrorContext(ctx, "Flow has no source node")

		return &models.ExecutionResult{
			Success: false,
			Steps:   execCtx.Steps,
			Error:   noSourceNodeMessage,
		}
	}

	// Visited set bounds traversal on cyclic graphs: a node already run in
	// this execution is not re-entered, so a cycle degrades to a finite
	// walk instead of unbounded recursion.
	visited := make(map[string]bool, g.Len())

	if err := e.executeFrom(ctx, logger, g, source, execCtx, visited); err != nil {
		logger.ErrorContext(ctx, "Flow execution failed", "error", err)

		return &models.ExecutionResult{
			Success: false,
			Steps:   execCtx.Steps,
			Error:   err.Error(),
		}
	}

	logger.InfoContext(ctx, "Flow execution completed", "steps", len(execCtx.Steps))

	return &models.ExecutionResult{
		Success: true,
		Output:  execCtx.CurrentData,
		Steps:   execCtx.Steps,
	}
}

func (e *Engine) executeFrom(
	ctx context.Context,
	logger *slog.Logger,
	g *graph.Graph,
	node *models.FlowNode,
	execCtx *models.ExecutionContext,
	visited map[string]bool,
) error {
	if visited[node.ID] {
		logger.WarnContext(ctx, "Node already visited in this run, skipping", "node_id", node.ID)

		return nil
	}

	visited[node.ID] = true

	if err := e.executeNode(ctx, logger, node, execCtx); err != nil {
		return err
	}

	for _, edge := range g.OutgoingEdges(node.ID) {
		target := g.NodeByID(edge.TargetNodeID)
		if target == nil {
			// Dangling edges are tolerated: the dashboard can delete a node
			// without cleaning up every edge pointing at it.
			logger.WarnContext(ctx, "Edge targets unknown node, skipping",
				"edge_id", edge.ID, "target_node_id", edge.TargetNodeID)

			continue
		}

		if err := e.executeFrom(ctx, logger, g, target, execCtx, visited); err != nil {
			return err
		}
	}

	return nil
}

// executeNode wraps one executor call in a step record: running on entry,
// completed or failed on exit. Failed steps keep their error message and
// the failure propagates so traversal halts.
func (e *Engine) executeNode(
	ctx context.Context,
	logger *slog.Logger,
	node *models.FlowNode,
	execCtx *models.ExecutionContext,
) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.node",
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ExecutionID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeKindKey, string(node.Kind)),
	)
	defer span.End()

	step := models.ExecutionStep{
		NodeID:    node.ID,
		NodeKind:  node.Kind,
		Status:    models.StepStatusRunning,
		StartedAt: time.Now().UTC(),
		Input:     execCtx.CurrentData,
	}
	execCtx.Steps = append(execCtx.Steps, step)
	stepIndex := len(execCtx.Steps) - 1

	output, err := e.runExecutor(ctx, node, execCtx)

	completedAt := time.Now().UTC()
	execCtx.Steps[stepIndex].CompletedAt = &completedAt

	if err != nil {
		otelhelper.SetError(span, err)
		execCtx.Steps[stepIndex].Status = models.StepStatusFailed
		execCtx.Steps[stepIndex].Error = err.Error()

		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	execCtx.Steps[stepIndex].Status = models.StepStatusCompleted
	execCtx.Steps[stepIndex].Output = output

	// Only transform results feed back into the data threaded through the
	// graph; destination output is observability, not payload.
	if node.Kind == models.NodeKindTransform {
		execCtx.CurrentData = output
	}

	logger.DebugContext(ctx, "Node executed", "node_id", node.ID, "node_kind", node.Kind)

	return nil
}

func (e *Engine) runExecutor(ctx context.Context, node *models.FlowNode, execCtx *models.ExecutionContext) (any, error) {
	executorType, err := executorTypeFor(node)
	if err != nil {
		return nil, err
	}

	executor, err := e.registry.CreateExecutor(ctx, executorType, node.ID, node.Config)
	if err != nil {
		return nil, err
	}

	return executor.Execute(ctx, execCtx)
}

// executorTypeFor maps a node to its registered executor type. Transform
// nodes carry a subtype in config ("script" when unspecified).
func executorTypeFor(node *models.FlowNode) (string, error) {
	switch node.Kind {
	case models.NodeKindSource:
		return "source", nil
	case models.NodeKindTransform:
		return "transform:" + node.ConfigString("type", models.TransformTypeScript), nil
	case models.NodeKindDestination:
		return "destination", nil
	default:
		return "", errors.New("unsupported node kind: " + string(node.Kind))
	}
}
