// Package sqlite exposes the SQLite store over the demo catalog while
// keeping the table mappings internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/entitykit/internal/catalog"
	"github.com/mesh-intelligence/entitykit/internal/sqlite"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// NewBackend returns a detached store holding every catalog table. Each
// table runs its before-write hook on Set. Call Attach to open it.
//
// Example:
//
//	store := sqlite.NewBackend(nil)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".entitykit-db",
//	})
//	defer store.Detach()
func NewBackend(logger *slog.Logger) types.Store {
	opts := []sqlite.Option{sqlite.WithTables(catalog.Tables()...)}
	if logger != nil {
		opts = append(opts, sqlite.WithLogger(logger))
	}
	return sqlite.NewBackend(opts...)
}

// Open returns an attached store over the catalog tables.
func Open(config types.Config, logger *slog.Logger) (types.Store, error) {
	store := NewBackend(logger)
	if err := store.Attach(config); err != nil {
		return nil, err
	}
	return store, nil
}
