// Package sqlite exposes the SQLite field store while keeping its
// implementation internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gridfields/internal/sqlite"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// NewBackend returns a detached SQLite store. A nil logger discards output.
//
// Example:
//
//	store := sqlite.NewBackend(nil)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".gridfields-db",
//	})
//	defer store.Detach()
func NewBackend(logger *zap.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
