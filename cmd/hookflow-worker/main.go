// Package main provides the hookflow execution worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hookflow/hookflow/pkg/cmd"
	"github.com/hookflow/hookflow/pkg/engine"
	"github.com/hookflow/hookflow/pkg/lifecycle"
	"github.com/hookflow/hookflow/pkg/log"
	"github.com/hookflow/hookflow/pkg/notifier"
	"github.com/hookflow/hookflow/pkg/otelhelper"
)

func main() {
	command := &cli.Command{
		Name:                  "hookflow-worker",
		EnableShellCompletion: true,
		Usage:                 "Run flow executions scheduled by the gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "notification-backend-url",
				Usage:   "Base URL of the notification backend (disabled when empty)",
				Sources: cli.EnvVars("NOTIFICATION_BACKEND_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces for executions",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("hookflow-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Hookflow Worker")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "hookflow-worker", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer, err := newTracer(ctx, command.Bool("tracing"))
			if err != nil {
				return err
			}

			backendNotifier := notifier.NewNotifier(logger, command.String("notification-backend-url"))
			registry := cmd.NewRegistry(logger)
			runner := lifecycle.NewRunner(logger, persistence, engine.NewEngine(registry, logger), backendNotifier)

			worker := NewWorker(workerID, persistence, eventBus, runner, logger, tracer)

			signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = worker.Start(signalCtx)
			if err != nil {
				return err
			}

			<-signalCtx.Done()
			logger.InfoContext(ctx, "Shutting down worker")

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func newTracer(ctx context.Context, enabled bool) (trace.Tracer, error) {
	if !enabled {
		return noop.NewTracerProvider().Tracer("hookflow-worker"), nil
	}

	return otelhelper.NewTracer(ctx, "hookflow-worker")
}
