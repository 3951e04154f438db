// Package db provides the SQL-backed knowledge store implementations:
// sqlite for zero-setup local runs and postgres with pgvector for
// production deployments.
package db

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/core/embedding"
	"github.com/nakamo-io/supportflow/store"
)

// New opens the knowledge store for the configured driver.
func New(driver, dsn string, embedder embedding.Provider, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch driver {
	case "sqlite":
		return NewSQLite(dsn, embedder, logger)
	case "postgres":
		return NewPostgres(dsn, embedder, logger)
	default:
		return nil, errors.Errorf("unsupported db driver: %s", driver)
	}
}
