// Package cmd wires shared infrastructure for the hookflow binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/persistence/file"
	"github.com/hookflow/hookflow/pkg/persistence/postgresql"
)

// NewPersistence selects a store implementation from the database URL
// scheme. postgres:// URLs get the PostgreSQL store; anything else falls
// back to the file store, which suits development.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch persistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func persistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
