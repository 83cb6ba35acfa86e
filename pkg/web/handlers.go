// Package web provides the HTTP surface of the gateway: webhook intake
// and health reporting.
package web

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hookflow/hookflow/pkg/dedup"
	"github.com/hookflow/hookflow/pkg/lifecycle"
	"github.com/hookflow/hookflow/pkg/otelhelper"
	"github.com/hookflow/hookflow/pkg/persistence"
)

type WebhookHandlers struct {
	logger      *slog.Logger
	manager     *lifecycle.Manager
	persistence persistence.Persistence
	deduper     dedup.Deduper
	tracer      trace.Tracer
}

// NewWebhookHandlers builds the gateway handlers. The deduper and tracer
// are optional; a nil deduper disables delivery deduplication and a nil
// tracer disables intake spans.
func NewWebhookHandlers(
	logger *slog.Logger,
	manager *lifecycle.Manager,
	store persistence.Persistence,
	deduper dedup.Deduper,
	tracer trace.Tracer,
) *WebhookHandlers {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("hookflow-gateway")
	}

	return &WebhookHandlers{
		logger:      logger,
		manager:     manager,
		persistence: store,
		deduper:     deduper,
		tracer:      tracer,
	}
}

// Register mounts the gateway routes on a fiber app.
func (h *WebhookHandlers) Register(app *fiber.App) {
	app.Post("/webhook/:webhookID", h.PostWebhook)
	app.Get("/health", h.Health)
}

// PostWebhook accepts one webhook delivery and schedules its flow run.
// The response is sent as soon as the records exist; the run itself is
// asynchronous.
func (h *WebhookHandlers) PostWebhook(c fiber.Ctx) error {
	webhookID := c.Params("webhookID")
	deliveryID := c.Get("X-Delivery-ID")

	if duplicate, response := h.claimDelivery(c, deliveryID); duplicate {
		return response
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "gateway.intake",
		attribute.String(otelhelper.WebhookIDKey, webhookID),
	)
	defer span.End()

	result, err := h.manager.Intake(ctx, lifecycle.IntakeRequest{
		WebhookID: webhookID,
		EventType: c.Get("X-Event-Type"),
		Payload:   c.Body(),
		Headers:   requestHeaders(c),
	})
	if err != nil {
		otelhelper.SetError(span, err)

		// Nothing was accepted, so the claim must not outlive this
		// attempt. A retried delivery gets a fresh intake, not a
		// duplicate answer for a run that never happened.
		h.releaseDelivery(c, deliveryID)

		return h.intakeError(c, err)
	}

	span.SetAttributes(
		attribute.String(otelhelper.FlowIDKey, result.FlowID),
		attribute.String(otelhelper.FlowNameKey, result.FlowName),
		attribute.String(otelhelper.EventIDKey, result.EventID),
		attribute.String(otelhelper.ExecutionIDKey, result.ExecutionID),
	)

	body := fiber.Map{
		"success":      true,
		"event_id":     result.EventID,
		"execution_id": result.ExecutionID,
		"flow_id":      result.FlowID,
		"flow_name":    result.FlowName,
	}

	h.rememberDelivery(c, deliveryID, body)

	return c.JSON(body)
}

// claimDelivery returns a ready response when the delivery ID was seen
// before. Dedup failures never reject a delivery; processing twice beats
// dropping a webhook.
func (h *WebhookHandlers) claimDelivery(c fiber.Ctx, deliveryID string) (bool, error) {
	if h.deduper == nil || deliveryID == "" {
		return false, nil
	}

	claimed, err := h.deduper.Claim(c.Context(), deliveryID)
	if err != nil {
		h.logger.WarnContext(c.Context(), "Delivery dedup unavailable, processing anyway",
			"delivery_id", deliveryID, "error", err)

		return false, nil
	}

	if claimed {
		return false, nil
	}

	original, err := h.deduper.Result(c.Context(), deliveryID)
	if err == nil && len(original) > 0 {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		return true, c.Send(original)
	}

	return true, c.JSON(fiber.Map{"success": true, "duplicate": true})
}

func (h *WebhookHandlers) rememberDelivery(c fiber.Ctx, deliveryID string, body fiber.Map) {
	if h.deduper == nil || deliveryID == "" {
		return
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return
	}

	err = h.deduper.StoreResult(c.Context(), deliveryID, encoded)
	if err != nil {
		h.logger.WarnContext(c.Context(), "Failed to store delivery result",
			"delivery_id", deliveryID, "error", err)
	}
}

func (h *WebhookHandlers) releaseDelivery(c fiber.Ctx, deliveryID string) {
	if h.deduper == nil || deliveryID == "" {
		return
	}

	err := h.deduper.Release(c.Context(), deliveryID)
	if err != nil {
		h.logger.WarnContext(c.Context(), "Failed to release delivery claim",
			"delivery_id", deliveryID, "error", err)
	}
}

func (h *WebhookHandlers) intakeError(c fiber.Ctx, err error) error {
	if persistence.IsFlowNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Flow not found",
		})
	}

	if validation, ok := lifecycle.AsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid payload",
			"message": validation.Message,
			"details": validation.Details,
		})
	}

	if inactive, ok := lifecycle.AsFlowInactive(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Flow is not active",
			"status": inactive.Status,
		})
	}

	h.logger.ErrorContext(c.Context(), "Webhook intake failed", "error", err)

	return internalError(c, err)
}

// Health reports gateway liveness and store reachability.
func (h *WebhookHandlers) Health(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func requestHeaders(c fiber.Ctx) map[string]string {
	headers := make(map[string]string)
	for name, values := range c.GetReqHeaders() {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	return headers
}
