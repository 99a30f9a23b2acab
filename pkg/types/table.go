package types

import "errors"

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. An empty id means insert: the
	// table's before-write hook assigns the identifier and timestamps.
	// Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Store gives access to tables by name. Callers attach to a backend,
// access tables, and detach when done.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not registered.
	GetTable(name string) (Table, error)

	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Relation registration errors. All of them are configuration errors
// surfaced at type-registration time.
var (
	ErrEntityUnknown     = errors.New("entity type not declared")
	ErrRelationNotFound  = errors.New("relation not found")
	ErrRelationMismatch  = errors.New("relation points at a different entity type")
	ErrAmbiguousRelation = errors.New("more than one relation to target")
	ErrDuplicateRelation = errors.New("relation already declared")
	ErrRegistryFrozen    = errors.New("relation registry is frozen")
	ErrInvalidRelation   = errors.New("invalid relation definition")
)
