package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// FlowRepository handles flow-related database operations.
type FlowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(db *sql.DB, logger *slog.Logger) *FlowRepository {
	return &FlowRepository{db: db, logger: logger}
}

const flowColumns = `
	id
  , workspace_id
  , name
  , status
  , webhook_id
  , nodes
  , edges
  , created_at
  , updated_at
`

// GetAll returns all flows ordered by creation time.
func (r *FlowRepository) GetAll(ctx context.Context) ([]*models.Flow, error) {
	query := `SELECT ` + flowColumns + ` FROM flows ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	flows := make([]*models.Flow, 0)

	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		flows = append(flows, flow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}

	return flows, nil
}

func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	query := `SELECT ` + flowColumns + ` FROM flows WHERE id = $1`

	flow, err := scanFlow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("GetByID", "flow", id, persistence.ErrFlowNotFound)
		}

		return nil, fmt.Errorf("failed to scan flow: %w", err)
	}

	return flow, nil
}

// GetByWebhookID resolves a flow by its external webhook identifier.
func (r *FlowRepository) GetByWebhookID(ctx context.Context, webhookID string) (*models.Flow, error) {
	query := `SELECT ` + flowColumns + ` FROM flows WHERE webhook_id = $1`

	flow, err := scanFlow(r.db.QueryRowContext(ctx, query, webhookID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("GetByWebhookID", "flow", webhookID, persistence.ErrFlowNotFound)
		}

		return nil, fmt.Errorf("failed to scan flow: %w", err)
	}

	return flow, nil
}

// Save upserts a flow, generating an ID and timestamps when missing.
func (r *FlowRepository) Save(ctx context.Context, flow *models.Flow) error {
	if err := models.Validate(flow); err != nil {
		return fmt.Errorf("invalid flow: %w", err)
	}

	now := time.Now().UTC()

	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	if flow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate flow ID: %w", err)
		}

		flow.ID = id.String()
	}

	query := `
		INSERT INTO flows (id, workspace_id, name, status, webhook_id, nodes, edges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id
		  , name = EXCLUDED.name
		  , status = EXCLUDED.status
		  , webhook_id = EXCLUDED.webhook_id
		  , nodes = EXCLUDED.nodes
		  , edges = EXCLUDED.edges
		  , updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		flow.ID,
		flow.WorkspaceID,
		flow.Name,
		flow.Status,
		flow.WebhookID,
		flow.Nodes,
		flow.Edges,
		flow.CreatedAt,
		flow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlow(row rowScanner) (*models.Flow, error) {
	var flow models.Flow

	err := row.Scan(
		&flow.ID,
		&flow.WorkspaceID,
		&flow.Name,
		&flow.Status,
		&flow.WebhookID,
		&flow.Nodes,
		&flow.Edges,
		&flow.CreatedAt,
		&flow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &flow, nil
}
