// Package file provides file-based persistence for flows, events and
// executions. One JSON document per file, suitable for development and
// tests.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

const dirPermissions = 0o755

// Persistence implements the persistence.Persistence interface on the file
// system. A coarse lock serializes writes; documents are small and the
// store is not meant for production traffic.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a file store rooted at the given directory. A
// file:// prefix is stripped so database-url style configuration works.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.TrimPrefix(root, "file://")

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Flows returns every stored flow.
func (p *Persistence) Flows(_ context.Context) ([]*models.Flow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var flows []*models.Flow

	err := p.eachDocument("flows", func(data []byte) error {
		var flow models.Flow
		if err := json.Unmarshal(data, &flow); err != nil {
			return err
		}

		flows = append(flows, &flow)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return flows, nil
}

func (p *Persistence) FlowByID(_ context.Context, id string) (*models.Flow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var flow models.Flow
	if err := p.readDocument("flows", id, &flow); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewDocumentError("GetByID", "flow", id, persistence.ErrFlowNotFound)
		}

		return nil, err
	}

	return &flow, nil
}

// FlowByWebhookID resolves a flow by its external webhook identifier.
func (p *Persistence) FlowByWebhookID(ctx context.Context, webhookID string) (*models.Flow, error) {
	flows, err := p.Flows(ctx)
	if err != nil {
		return nil, err
	}

	for _, flow := range flows {
		if flow.WebhookID == webhookID {
			return flow, nil
		}
	}

	return nil, persistence.NewDocumentError("GetByWebhookID", "flow", webhookID, persistence.ErrFlowNotFound)
}

func (p *Persistence) SaveFlow(_ context.Context, flow *models.Flow) error {
	if err := models.Validate(flow); err != nil {
		return fmt.Errorf("invalid flow: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.writeDocument("flows", flow.ID, flow)
}

func (p *Persistence) CreateEvent(_ context.Context, event *models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.createDocument("events", "event", event.ID, event)
}

func (p *Persistence) EventByID(_ context.Context, id string) (*models.Event, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var event models.Event
	if err := p.readDocument("events", id, &event); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewDocumentError("GetByID", "event", id, persistence.ErrEventNotFound)
		}

		return nil, err
	}

	return &event, nil
}

func (p *Persistence) UpdateEvent(_ context.Context, id string, fields map[string]any) error {
	return p.mergeDocument("events", "event", id, persistence.ErrEventNotFound, fields)
}

func (p *Persistence) CreateExecution(_ context.Context, execution *models.Execution) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.createDocument("executions", "execution", execution.ID, execution)
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var execution models.Execution
	if err := p.readDocument("executions", id, &execution); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewDocumentError("GetByID", "execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, err
	}

	return &execution, nil
}

func (p *Persistence) UpdateExecution(_ context.Context, id string, fields map[string]any) error {
	return p.mergeDocument("executions", "execution", id, persistence.ErrExecutionNotFound, fields)
}

// PendingExecutions returns executions still waiting for a worker, oldest
// unspecified order (callers treat them as a set to drain).
func (p *Persistence) PendingExecutions(_ context.Context) ([]*models.Execution, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var pending []*models.Execution

	err := p.eachDocument("executions", func(data []byte) error {
		var execution models.Execution
		if err := json.Unmarshal(data, &execution); err != nil {
			return err
		}

		if execution.Status == models.ExecutionStatusPending {
			pending = append(pending, &execution)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pending, nil
}

// mergeDocument applies a partial field map onto a stored document. The
// merge happens on the raw JSON object, so any field name is accepted:
// file persistence never raises UnknownFieldError.
func (p *Persistence) mergeDocument(dir, kind, id string, notFound error, fields map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path := p.documentPath(dir, id)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewDocumentError("Update", kind, id, notFound)
		}

		return err
	}

	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", kind, id, err)
	}

	for key, value := range fields {
		document[key] = value
	}

	return p.writeDocument(dir, id, document)
}

// createDocument writes a new document, rejecting an id that already has
// one. Events and executions are created exactly once; later changes go
// through the update path.
func (p *Persistence) createDocument(dir, kind, id string, v any) error {
	if _, err := os.Stat(p.documentPath(dir, id)); err == nil {
		return persistence.NewDocumentError("Create", kind, id, persistence.ErrDocumentAlreadyExists)
	}

	return p.writeDocument(dir, id, v)
}

func (p *Persistence) documentPath(dir, id string) string {
	return filepath.Join(p.root, dir, id+".json")
}

func (p *Persistence) readDocument(dir, id string, v any) error {
	data, err := os.ReadFile(p.documentPath(dir, id))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

func (p *Persistence) writeDocument(dir, id string, v any) error {
	if err := os.MkdirAll(filepath.Join(p.root, dir), dirPermissions); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(p.documentPath(dir, id), data, 0o644)
}

func (p *Persistence) eachDocument(dir string, fn func(data []byte) error) error {
	root := filepath.Join(p.root, dir)

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(root, entry.Name()))
		if err != nil {
			return err
		}

		if err := fn(data); err != nil {
			return err
		}
	}

	return nil
}
