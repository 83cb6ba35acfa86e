package lifecycle

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hookflow/hookflow/pkg/engine"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/notifier"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// Runner executes a scheduled run and settles its Event and Execution
// records. All store writes in this path are tolerant: a failed write is
// logged and the run's in-memory result may be lost, but the process
// never crashes over persistence.
type Runner struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	engine      *engine.Engine
	notifier    *notifier.Notifier
}

func NewRunner(
	logger *slog.Logger,
	store persistence.Persistence,
	flowEngine *engine.Engine,
	backendNotifier *notifier.Notifier,
) *Runner {
	return &Runner{
		logger:      logger,
		persistence: store,
		engine:      flowEngine,
		notifier:    backendNotifier,
	}
}

// RunOutcome summarizes one settled execution for the caller, which may
// emit lifecycle events from it.
type RunOutcome struct {
	Success  bool
	Error    string
	Output   any
	Duration time.Duration
}

// Run drives one execution end to end. The flow and event are loaded
// fresh so a replayed request picks up the current flow definition.
func (r *Runner) Run(ctx context.Context, executionID, eventID, flowID string) *RunOutcome {
	logger := r.logger.With("execution_id", executionID, "flow_id", flowID)
	startedAt := time.Now().UTC()

	r.updateExecution(ctx, executionID, map[string]any{
		"status": string(models.ExecutionStatusRunning),
	})

	flow, err := r.persistence.FlowByID(ctx, flowID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load flow for execution", "error", err)

		return r.settleFailure(ctx, executionID, eventID, startedAt, nil, "flow not found: "+flowID)
	}

	input := r.eventPayload(ctx, eventID, logger)

	nodes, edges, err := flow.Graph()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse flow graph", "error", err)

		return r.settleFailure(ctx, executionID, eventID, startedAt, flow, "invalid flow definition: "+err.Error())
	}

	result := r.engine.Execute(ctx, nodes, edges, executionID, flowID, eventID, input)
	duration := time.Since(startedAt)

	steps, err := models.SerializeSteps(result.Steps)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to serialize execution steps", "error", err)

		steps = "[]"
	}

	completedAt := time.Now().UTC()

	if result.Success {
		r.updateExecution(ctx, executionID, map[string]any{
			"status":          string(models.ExecutionStatusCompleted),
			"completed_at":    completedAt,
			"duration":        duration.Milliseconds(),
			"node_executions": steps,
		})
		r.updateEvent(ctx, eventID, models.EventStatusProcessed)
		logger.InfoContext(ctx, "Flow execution completed",
			"duration_ms", duration.Milliseconds(), "steps", len(result.Steps))

		return &RunOutcome{Success: true, Output: result.Output, Duration: duration}
	}

	r.updateExecution(ctx, executionID, map[string]any{
		"status":          string(models.ExecutionStatusFailed),
		"completed_at":    completedAt,
		"duration":        duration.Milliseconds(),
		"node_executions": steps,
		"error":           result.Error,
	})
	r.updateEvent(ctx, eventID, models.EventStatusFailed)
	r.notifier.NotifyFlowFailure(ctx, flow.WorkspaceID, flow.Name, result.Error)
	logger.WarnContext(ctx, "Flow execution failed",
		"duration_ms", duration.Milliseconds(), "error", result.Error)

	return &RunOutcome{Success: false, Error: result.Error, Duration: duration}
}

// eventPayload loads and decodes the triggering event's payload. A
// missing or undecodable event degrades to an empty input object.
func (r *Runner) eventPayload(ctx context.Context, eventID string, logger *slog.Logger) any {
	event, err := r.persistence.EventByID(ctx, eventID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load event for execution", "event_id", eventID, "error", err)

		return map[string]any{}
	}

	var input any

	err = json.Unmarshal([]byte(event.Payload), &input)
	if err != nil {
		logger.WarnContext(ctx, "Event payload is not valid JSON", "event_id", eventID, "error", err)

		return map[string]any{}
	}

	return input
}

func (r *Runner) settleFailure(
	ctx context.Context,
	executionID, eventID string,
	startedAt time.Time,
	flow *models.Flow,
	message string,
) *RunOutcome {
	duration := time.Since(startedAt)

	r.updateExecution(ctx, executionID, map[string]any{
		"status":       string(models.ExecutionStatusFailed),
		"completed_at": time.Now().UTC(),
		"duration":     duration.Milliseconds(),
		"error":        message,
	})
	r.updateEvent(ctx, eventID, models.EventStatusFailed)

	if flow != nil {
		r.notifier.NotifyFlowFailure(ctx, flow.WorkspaceID, flow.Name, message)
	}

	return &RunOutcome{Success: false, Error: message, Duration: duration}
}

// updateExecution writes a partial update, stripping one unknown field
// and retrying once when the store's schema lags the application.
func (r *Runner) updateExecution(ctx context.Context, executionID string, fields map[string]any) {
	err := r.persistence.UpdateExecution(ctx, executionID, fields)
	if err == nil {
		return
	}

	// Intake tolerates a failed execution create, so the record may not
	// exist. The run still settles through the event record.
	if persistence.IsExecutionNotFound(err) {
		r.logger.WarnContext(ctx, "Execution record missing, skipping update",
			"execution_id", executionID)

		return
	}

	field, unknown := persistence.IsUnknownField(err)
	if unknown {
		r.logger.WarnContext(ctx, "Store rejected execution field, retrying without it",
			"execution_id", executionID, "field", field)

		delete(fields, field)

		if len(fields) > 0 {
			err = r.persistence.UpdateExecution(ctx, executionID, fields)
			if err == nil {
				return
			}
		}
	}

	r.logger.ErrorContext(ctx, "Failed to update execution record",
		"execution_id", executionID, "error", err)
}

func (r *Runner) updateEvent(ctx context.Context, eventID string, status models.EventStatus) {
	err := r.persistence.UpdateEvent(ctx, eventID, map[string]any{
		"status": string(status),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update event record",
			"event_id", eventID, "error", err)
	}
}
