// Package sqlite implements a SQLite write path for entitykit entities.
//
// Every table runs its before-write hook (see package lifecycle) inside Set,
// so identifiers and audit timestamps are populated immediately before the
// INSERT or UPDATE. The package does not traverse relations.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/entitykit/pkg/lifecycle"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// DatabaseFile is the SQLite file created inside Config.DataDir.
const DatabaseFile = "entitykit.db"

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on a single SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	stamper  *lifecycle.Stamper

	defs         []TableDef
	tables       map[string]TableDef
	stamperOpts  []lifecycle.Option
	logger       *slog.Logger
	inMemoryOnly bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithTables registers table definitions. Their DDL runs on Attach.
func WithTables(defs ...TableDef) Option {
	return func(b *Backend) {
		for _, def := range defs {
			def.adopt(b)
		}
		b.defs = append(b.defs, defs...)
	}
}

// WithStamperOptions adds lifecycle options applied after those derived
// from Config, e.g. a fixed clock in tests.
func WithStamperOptions(opts ...lifecycle.Option) Option {
	return func(b *Backend) {
		b.stamperOpts = append(b.stamperOpts, opts...)
	}
}

// WithLogger sets the backend logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// InMemory keeps the database in memory and ignores DataDir.
func InMemory() Option {
	return func(b *Backend) {
		b.inMemoryOnly = true
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables: make(map[string]TableDef),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetTable returns the Table registered under name.
// Returns ErrTableNotFound if the name is not recognized.
// Returns ErrDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// TableNames returns the registered table names in registration order.
func (b *Backend) TableNames() []string {
	names := make([]string, 0, len(b.defs))
	for _, d := range b.defs {
		names = append(names, d.Name())
	}
	return names
}

// Attach validates config, opens the database, creates missing tables, and
// binds each table's before-write hook to a Stamper built from config.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	stamper, err := lifecycle.NewStamperFromConfig(config, b.stamperOpts...)
	if err != nil {
		return fmt.Errorf("building stamper: %w", err)
	}

	dsn, err := b.dataSource(config)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	// A single connection keeps an in-memory database shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	for _, def := range b.defs {
		if _, err := db.Exec(def.CreateSQL()); err != nil {
			db.Close()
			return fmt.Errorf("creating table %s: %w", def.Name(), err)
		}
	}

	b.db = db
	b.config = config
	b.stamper = stamper

	for _, def := range b.defs {
		def.bind(stamper)
		b.tables[def.Name()] = def
	}
	b.attached = true

	b.logger.Info("backend attached", "dsn", dsn, "tables", len(b.defs), "uuid_version", config.UUIDVersion)
	return nil
}

func (b *Backend) dataSource(config types.Config) (string, error) {
	if b.inMemoryOnly {
		return ":memory:", nil
	}
	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, DatabaseFile), nil
}

// Detach releases all resources held by the backend.
// After Detach, GetTable returns ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.stamper = nil
	b.tables = make(map[string]TableDef)
	b.logger.Info("backend detached")
	return nil
}

// Stamper returns the Stamper bound at Attach, or nil when detached.
func (b *Backend) Stamper() *lifecycle.Stamper {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stamper
}
