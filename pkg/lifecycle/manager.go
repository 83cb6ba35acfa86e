// Package lifecycle coordinates the webhook intake path and the
// asynchronous execution run. The manager validates deliveries and
// creates the durable records; the runner drives the engine and settles
// those records afterwards.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/events"
	"github.com/hookflow/hookflow/pkg/graph"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/notifier"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// Manager handles webhook intake: it resolves the flow, validates the
// payload, persists the Event and pending Execution, and hands the run
// to a worker through the event bus.
type Manager struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	notifier    *notifier.Notifier
}

func NewManager(
	logger *slog.Logger,
	store persistence.Persistence,
	publisher eventbus.EventPublisher,
	backendNotifier *notifier.Notifier,
) *Manager {
	return &Manager{
		logger:      logger,
		persistence: store,
		publisher:   publisher,
		notifier:    backendNotifier,
	}
}

// IntakeRequest carries one inbound webhook delivery.
type IntakeRequest struct {
	WebhookID string
	EventType string
	Payload   []byte
	Headers   map[string]string
}

// IntakeResult is returned to the webhook caller on accepted deliveries.
type IntakeResult struct {
	EventID     string
	ExecutionID string
	FlowID      string
	FlowName    string
}

// Intake validates a webhook delivery and schedules its execution. The
// run itself happens asynchronously; a nil error means the delivery was
// accepted, not that the flow succeeded.
func (m *Manager) Intake(ctx context.Context, req IntakeRequest) (*IntakeResult, error) {
	flow, err := m.persistence.FlowByWebhookID(ctx, req.WebhookID)
	if err != nil {
		return nil, err
	}

	err = m.validatePayload(flow, req.Payload)
	if err != nil {
		return nil, err
	}

	if !flow.IsActive() {
		return nil, &FlowInactiveError{Status: flow.Status}
	}

	event, err := m.createEvent(ctx, flow, req)
	if err != nil {
		return nil, err
	}

	executionID := m.createExecution(ctx, flow, event)

	received := events.EventReceived{
		BaseEvent: events.NewBaseEvent(events.EventReceivedEvent, flow.ID),
		EventID:   event.ID,
		Source:    event.Source,
		EventKind: event.EventType,
	}

	err = m.publisher.Publish(ctx, flow.ID, received)
	if err != nil {
		m.logger.WarnContext(ctx, "Failed to publish event received notification",
			"event_id", event.ID, "error", err)
	}

	requested := events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(events.ExecutionRequestedEvent, flow.ID),
		ExecutionID: executionID,
		EventID:     event.ID,
	}

	err = m.publisher.Publish(ctx, flow.ID, requested)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to publish execution request, relying on pending recovery",
			"execution_id", executionID, "error", err)
	}

	go m.notifier.CheckEventVolume(context.WithoutCancel(ctx), flow.WorkspaceID)

	return &IntakeResult{
		EventID:     event.ID,
		ExecutionID: executionID,
		FlowID:      flow.ID,
		FlowName:    flow.Name,
	}, nil
}

// validatePayload checks the delivery body is JSON and, when the source
// node declares a payload schema, that the body matches it. Rejections
// happen before any record is created.
func (m *Manager) validatePayload(flow *models.Flow, payload []byte) error {
	if !json.Valid(payload) {
		return &ValidationError{
			Message: "request body is not valid JSON",
			Details: []string{"payload must be a JSON document"},
		}
	}

	schema := m.sourceSchema(flow)
	if schema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return &ValidationError{
			Message: "payload schema validation failed",
			Details: []string{err.Error()},
		}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			details = append(details, violation.String())
		}

		return &ValidationError{
			Message: "payload does not match the flow's schema",
			Details: details,
		}
	}

	return nil
}

func (m *Manager) sourceSchema(flow *models.Flow) map[string]any {
	nodes, edges, err := flow.Graph()
	if err != nil {
		return nil
	}

	source, err := graph.New(nodes, edges).SourceNode()
	if err != nil {
		return nil
	}

	return source.PayloadSchema()
}

func (m *Manager) createEvent(ctx context.Context, flow *models.Flow, req IntakeRequest) (*models.Event, error) {
	headers, err := json.Marshal(req.Headers)
	if err != nil {
		headers = []byte("{}")
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = "webhook.received"
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		WorkspaceID: flow.WorkspaceID,
		FlowID:      flow.ID,
		Source:      "webhook",
		EventType:   eventType,
		Payload:     string(req.Payload),
		Headers:     string(headers),
		ReceivedAt:  time.Now().UTC(),
		Status:      models.EventStatusPending,
	}

	err = m.persistence.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event record: %w", err)
	}

	return event, nil
}

// createExecution persists the pending Execution record. Creation
// failures are logged but do not abort delivery, so the run proceeds
// under a locally generated id at the cost of crash recovery for it.
func (m *Manager) createExecution(ctx context.Context, flow *models.Flow, event *models.Event) string {
	execution := &models.Execution{
		ID:        uuid.New().String(),
		FlowID:    flow.ID,
		EventID:   event.ID,
		Status:    models.ExecutionStatusPending,
		StartedAt: time.Now().UTC(),
	}

	err := m.persistence.CreateExecution(ctx, execution)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to create execution record, continuing without durability",
			"execution_id", execution.ID, "flow_id", flow.ID, "error", err)
	}

	return execution.ID
}
