package main

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/events"
	"github.com/hookflow/hookflow/pkg/lifecycle"
	"github.com/hookflow/hookflow/pkg/otelhelper"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// Worker consumes execution requests from the event bus and drives the
// lifecycle runner. On startup it also drains executions left pending by
// a previous process, so accepted deliveries survive restarts.
type Worker struct {
	workerID    string
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	runner      *lifecycle.Runner
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewWorker(
	workerID string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	runner *lifecycle.Runner,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Worker {
	return &Worker{
		workerID:    workerID,
		persistence: store,
		eventBus:    eventBus,
		runner:      runner,
		logger:      logger,
		tracer:      tracer,
	}
}

// Start recovers pending executions, then subscribes for new requests.
// It returns once the subscription is established; message handling
// continues until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	err := w.recoverPending(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Pending execution recovery failed", "error", err)
	}

	err = w.eventBus.Handle(events.ExecutionRequestedEvent, w.handleExecutionRequested)
	if err != nil {
		return fmt.Errorf("failed to register execution handler: %w", err)
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to event bus: %w", err)
	}

	w.logger.InfoContext(ctx, "Worker started", "worker_id", w.workerID)

	return nil
}

func (w *Worker) handleExecutionRequested(ctx context.Context, event any) error {
	requested, ok := event.(*events.ExecutionRequested)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	// Runs are independent per flow, so each request gets its own
	// goroutine. The execution record, not the bus, is the durability
	// boundary: a crash mid-run is replayed by recovery on restart.
	go w.execute(ctx, "worker.execution", requested.ExecutionID, requested.EventID, requested.FlowID)

	return nil
}

// recoverPending re-runs executions that were accepted but never
// settled. The records already exist, so the runner picks them up the
// same way it handles fresh requests.
func (w *Worker) recoverPending(ctx context.Context) error {
	pending, err := w.persistence.PendingExecutions(ctx)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Recovering pending executions", "count", len(pending))

	for _, execution := range pending {
		w.execute(ctx, "worker.recovery", execution.ID, execution.EventID, execution.FlowID)
	}

	return nil
}

func (w *Worker) execute(ctx context.Context, spanName, executionID, eventID, flowID string) {
	runCtx, span := otelhelper.StartSpan(ctx, w.tracer, spanName,
		attribute.String(otelhelper.ExecutionIDKey, executionID),
		attribute.String(otelhelper.EventIDKey, eventID),
		attribute.String(otelhelper.FlowIDKey, flowID),
		attribute.String(otelhelper.WorkerIDKey, w.workerID),
	)
	defer span.End()

	outcome := w.runner.Run(runCtx, executionID, eventID, flowID)
	w.publishOutcome(runCtx, flowID, executionID, outcome)
}

// publishOutcome announces the settled run on the bus. Listeners are
// informational, so a publish failure is logged and dropped.
func (w *Worker) publishOutcome(ctx context.Context, flowID, executionID string, outcome *lifecycle.RunOutcome) {
	base := events.NewBaseEvent(events.ExecutionCompletedEvent, flowID)
	base.WorkerID = w.workerID

	var event eventbus.Event

	if outcome.Success {
		event = events.ExecutionCompleted{
			BaseEvent:   base,
			ExecutionID: executionID,
			Result:      outcome.Output,
			Duration:    outcome.Duration,
		}
	} else {
		base.Type = events.ExecutionFailedEvent
		event = events.ExecutionFailed{
			BaseEvent:   base,
			ExecutionID: executionID,
			Error:       outcome.Error,
			Duration:    outcome.Duration,
		}
	}

	err := w.eventBus.Publish(ctx, flowID, event)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish execution outcome",
			"execution_id", executionID, "error", err)
	}
}
