package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// EventRepository handles event-related database operations.
type EventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sql.DB, logger *slog.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// eventColumns maps updatable field names to their columns. A field
// outside this map fails the update with an UnknownFieldError so callers
// can strip it and retry.
var eventColumns = map[string]string{
	"status":  "status",
	"payload": "payload",
	"headers": "headers",
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, workspace_id, flow_id, source, event_type, payload, headers, received_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.WorkspaceID,
		event.FlowID,
		event.Source,
		event.EventType,
		event.Payload,
		event.Headers,
		event.ReceivedAt,
		event.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT
			id
		  , workspace_id
		  , flow_id
		  , source
		  , event_type
		  , payload
		  , headers
		  , received_at
		  , status
		FROM events
		WHERE id = $1
	`

	var event models.Event

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.WorkspaceID,
		&event.FlowID,
		&event.Source,
		&event.EventType,
		&event.Payload,
		&event.Headers,
		&event.ReceivedAt,
		&event.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("GetByID", "event", id, persistence.ErrEventNotFound)
		}

		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	return &event, nil
}

// Update applies a partial field map to an event row.
func (r *EventRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	query, args, err := buildUpdate("events", eventColumns, id, fields)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}

	if affected == 0 {
		return persistence.NewDocumentError("Update", "event", id, persistence.ErrEventNotFound)
	}

	return nil
}

// buildUpdate assembles an UPDATE statement from a field map against a
// column allowlist. Fields are sorted so the generated SQL is stable.
func buildUpdate(table string, columns map[string]string, id string, fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no fields to update for %s %s", table, id)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	assignments := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)

	for _, name := range names {
		column, ok := columns[name]
		if !ok {
			return "", nil, &persistence.UnknownFieldError{Field: name}
		}

		args = append(args, fields[name])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(assignments, ", "), len(args))

	return query, args, nil
}
