// Package persistence provides the document-store abstraction the engine
// and lifecycle manager run against: get, create and update by id.
package persistence

import (
	"context"

	"github.com/hookflow/hookflow/pkg/models"
)

// Persistence is the storage contract. Implementations guarantee per-
// document atomic updates; no multi-document transactions are required.
//
// UpdateEvent and UpdateExecution take partial field maps so the async
// phase can strip a rejected field and retry (see UnknownFieldError).
type Persistence interface {
	Flows(ctx context.Context) ([]*models.Flow, error)
	FlowByID(ctx context.Context, id string) (*models.Flow, error)
	FlowByWebhookID(ctx context.Context, webhookID string) (*models.Flow, error)
	SaveFlow(ctx context.Context, flow *models.Flow) error

	CreateEvent(ctx context.Context, event *models.Event) error
	EventByID(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, fields map[string]any) error

	CreateExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
	UpdateExecution(ctx context.Context, id string, fields map[string]any) error
	PendingExecutions(ctx context.Context) ([]*models.Execution, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
