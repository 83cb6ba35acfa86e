package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/hookflow/hookflow/pkg/dedup"
	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/lifecycle"
	"github.com/hookflow/hookflow/pkg/notifier"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/web"
)

// Gateway is the webhook-facing service: it accepts deliveries, creates
// the durable records and publishes execution requests for the workers.
type Gateway struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	notifier    *notifier.Notifier
	deduper     dedup.Deduper
	tracer      trace.Tracer
	cron        *cron.Cron
}

func NewGateway(
	logger *slog.Logger,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	backendNotifier *notifier.Notifier,
	deduper dedup.Deduper,
	tracer trace.Tracer,
) *Gateway {
	return &Gateway{
		logger:      logger,
		persistence: store,
		eventBus:    eventBus,
		notifier:    backendNotifier,
		deduper:     deduper,
		tracer:      tracer,
	}
}

func (g *Gateway) App() *fiber.App {
	manager := lifecycle.NewManager(g.logger, g.persistence, g.eventBus, g.notifier)
	handlers := web.NewWebhookHandlers(g.logger, manager, g.persistence, g.deduper, g.tracer)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hookflow Gateway")
	})

	handlers.Register(app)

	return app
}

// StartVolumeChecks schedules a periodic sweep that asks the backend to
// evaluate event volume for every workspace with stored flows.
func (g *Gateway) StartVolumeChecks(ctx context.Context, schedule string) error {
	g.cron = cron.New()

	_, err := g.cron.AddFunc(schedule, func() {
		g.sweepWorkspaces(ctx)
	})
	if err != nil {
		return err
	}

	g.cron.Start()

	return nil
}

func (g *Gateway) sweepWorkspaces(ctx context.Context) {
	flows, err := g.persistence.Flows(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to list flows for volume sweep", "error", err)

		return
	}

	workspaces := make(map[string]struct{})
	for _, flow := range flows {
		workspaces[flow.WorkspaceID] = struct{}{}
	}

	for workspaceID := range workspaces {
		g.notifier.CheckEventVolume(ctx, workspaceID)
	}

	g.logger.InfoContext(ctx, "Volume sweep finished", "workspaces", len(workspaces))
}

func (g *Gateway) Start(port int) error {
	return g.App().Listen(":" + strconv.Itoa(port))
}

func (g *Gateway) Stop() {
	if g.cron != nil {
		g.cron.Stop()
	}
}
