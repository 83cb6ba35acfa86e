// Package postgresql provides PostgreSQL persistence for flows, events and
// executions.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	flowRepo      *FlowRepository
	eventRepo     *EventRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:            database,
		logger:        logger,
		flowRepo:      NewFlowRepository(database, logger),
		eventRepo:     NewEventRepository(database, logger),
		executionRepo: NewExecutionRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Flows(ctx context.Context) ([]*models.Flow, error) {
	return p.flowRepo.GetAll(ctx)
}

func (p *Persistence) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	return p.flowRepo.GetByID(ctx, id)
}

func (p *Persistence) FlowByWebhookID(ctx context.Context, webhookID string) (*models.Flow, error) {
	return p.flowRepo.GetByWebhookID(ctx, webhookID)
}

func (p *Persistence) SaveFlow(ctx context.Context, flow *models.Flow) error {
	return p.flowRepo.Save(ctx, flow)
}

func (p *Persistence) CreateEvent(ctx context.Context, event *models.Event) error {
	return p.eventRepo.Create(ctx, event)
}

func (p *Persistence) EventByID(ctx context.Context, id string) (*models.Event, error) {
	return p.eventRepo.GetByID(ctx, id)
}

func (p *Persistence) UpdateEvent(ctx context.Context, id string, fields map[string]any) error {
	return p.eventRepo.Update(ctx, id, fields)
}

func (p *Persistence) CreateExecution(ctx context.Context, execution *models.Execution) error {
	return p.executionRepo.Create(ctx, execution)
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	return p.executionRepo.GetByID(ctx, id)
}

func (p *Persistence) UpdateExecution(ctx context.Context, id string, fields map[string]any) error {
	return p.executionRepo.Update(ctx, id, fields)
}

func (p *Persistence) PendingExecutions(ctx context.Context) ([]*models.Execution, error) {
	return p.executionRepo.Pending(ctx)
}
