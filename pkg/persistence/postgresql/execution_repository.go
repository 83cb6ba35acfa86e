package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

var executionColumns = map[string]string{
	"status":          "status",
	"completed_at":    "completed_at",
	"duration":        "duration_ms",
	"node_executions": "node_executions",
	"error":           "error",
}

const executionSelect = `
	SELECT
		id
	  , flow_id
	  , event_id
	  , status
	  , started_at
	  , completed_at
	  , duration_ms
	  , node_executions
	  , error
	FROM executions
`

func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	query := `
		INSERT INTO executions (id, flow_id, event_id, status, started_at, completed_at, duration_ms, node_executions, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	nodeExecutions := execution.NodeExecutions
	if nodeExecutions == "" {
		nodeExecutions = "[]"
	}

	_, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.FlowID,
		execution.EventID,
		execution.Status,
		execution.StartedAt,
		execution.CompletedAt,
		execution.DurationMS,
		nodeExecutions,
		nullableString(execution.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := scanExecution(r.db.QueryRowContext(ctx, executionSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("GetByID", "execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// Update applies a partial field map to an execution row.
func (r *ExecutionRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	query, args, err := buildUpdate("executions", executionColumns, id, fields)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}

	if affected == 0 {
		return persistence.NewDocumentError("Update", "execution", id, persistence.ErrExecutionNotFound)
	}

	return nil
}

// Pending returns executions that were accepted but never ran to
// completion, oldest first so recovery drains in arrival order.
func (r *ExecutionRepository) Pending(ctx context.Context) ([]*models.Execution, error) {
	query := executionSelect + ` WHERE status = $1 ORDER BY started_at ASC`

	rows, err := r.db.QueryContext(ctx, query, models.ExecutionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var (
		execution models.Execution
		errText   sql.NullString
	)

	err := row.Scan(
		&execution.ID,
		&execution.FlowID,
		&execution.EventID,
		&execution.Status,
		&execution.StartedAt,
		&execution.CompletedAt,
		&execution.DurationMS,
		&execution.NodeExecutions,
		&errText,
	)
	if err != nil {
		return nil, err
	}

	execution.Error = errText.String

	return &execution, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}
