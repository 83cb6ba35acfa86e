// Package main provides the hookflow gateway server.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hookflow/hookflow/pkg/cmd"
	"github.com/hookflow/hookflow/pkg/dedup"
	"github.com/hookflow/hookflow/pkg/log"
	"github.com/hookflow/hookflow/pkg/notifier"
	"github.com/hookflow/hookflow/pkg/otelhelper"
)

func main() {
	command := &cli.Command{
		Name:                  "hookflow-gateway",
		EnableShellCompletion: true,
		Usage:                 "Accept webhook deliveries and schedule flow executions",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to run the gateway on",
				Value:   8085,
				Sources: cli.EnvVars("PORT"),
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
				Name:    "redis-url",
				Usage:   "Redis URL for delivery deduplication (disabled when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "notification-backend-url",
				Usage:   "Base URL of the notification backend (disabled when empty)",
				Sources: cli.EnvVars("NOTIFICATION_BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "volume-check-schedule",
				Usage:   "Cron schedule for workspace event volume sweeps",
				Value:   "@every 15m",
				Sources: cli.EnvVars("VOLUME_CHECK_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces for webhook intake",
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
			logger := log.WithModule("hookflow-gateway")

			logger.InfoContext(ctx, "Initializing Hookflow Gateway")

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

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "hookflow-gateway", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			deduper, err := newDeduper(ctx, command.String("redis-url"))
			if err != nil {
				return err
			}

			if deduper != nil {
				defer func() {
					err := deduper.Close()
					if err != nil {
						logger.ErrorContext(ctx, "Failed to close deduper", "error", err)
					}
				}()
			}

			tracer, err := newTracer(ctx, command.Bool("tracing"))
			if err != nil {
				return err
			}

			backendNotifier := notifier.NewNotifier(logger, command.String("notification-backend-url"))

			gateway := NewGateway(logger, persistence, eventBus, backendNotifier, deduper, tracer)
			defer gateway.Stop()

			err = gateway.StartVolumeChecks(ctx, command.String("volume-check-schedule"))
			if err != nil {
				return err
			}

			return gateway.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func newTracer(ctx context.Context, enabled bool) (trace.Tracer, error) {
	if !enabled {
		return noop.NewTracerProvider().Tracer("hookflow-gateway"), nil
	}

	return otelhelper.NewTracer(ctx, "hookflow-gateway")
}

func newDeduper(ctx context.Context, redisURL string) (dedup.Deduper, error) {
	if redisURL == "" {
		return nil, nil
	}

	return dedup.NewRedisDeduper(ctx, redisURL, dedup.DefaultRetention)
}
