package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/entitykit/pkg/lifecycle"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Fixed column names. Every table has an id primary key; tables whose
// entity implements the timestamp capability also have the two audit columns.
const (
	columnID        = "id"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

// timeLayout is the fixed-width text encoding for timestamp columns, so
// that text order matches time order. Values are stored in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// TableDef is a table the Backend creates on Attach and serves by name.
type TableDef interface {
	types.Table
	Name() string
	CreateSQL() string
	adopt(b *Backend)
	bind(s *lifecycle.Stamper)
}

// Record is the minimum an entity needs to be stored: an identifier the hook
// can set and the table can read back.
type Record interface {
	types.HasID
	GetID() string
}

type timestamped interface {
	types.HasTimestamps
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// Mapping describes how an entity type maps to a SQLite table.
type Mapping[T Record] struct {
	// Name is the SQLite table name.
	Name string
	// DDL creates the table. It should use CREATE TABLE IF NOT EXISTS.
	DDL string
	// Columns lists the data columns after id and the audit columns.
	Columns []string
	// New returns an empty entity.
	New func() T
	// Values returns the values for Columns, in order.
	Values func(T) []any
	// Fields returns scan destinations for Columns, in order.
	Fields func(T) []any
	// Hook builds the before-write hook from the backend's Stamper.
	// Nil means entities are written as given.
	Hook func(*lifecycle.Stamper) lifecycle.Hook[T]
}

// Table implements types.Table for one entity type.
type Table[T Record] struct {
	mapping Mapping[T]
	stamped bool
	backend *Backend
	hook    lifecycle.Hook[T]
}

// Compile-time check with a representative entity type.
var _ TableDef = (*Table[*types.Identity])(nil)

// NewTable returns a table definition for m.
func NewTable[T Record](m Mapping[T]) *Table[T] {
	_, stamped := any(m.New()).(timestamped)
	return &Table[T]{mapping: m, stamped: stamped}
}

// Name returns the SQLite table name.
func (t *Table[T]) Name() string { return t.mapping.Name }

// CreateSQL returns the table DDL.
func (t *Table[T]) CreateSQL() string { return t.mapping.DDL }

// adopt ties the table to its backend. It runs once, from WithTables, before
// the backend is shared.
func (t *Table[T]) adopt(b *Backend) {
	t.backend = b
}

// bind builds the hook from s. The backend holds its write lock.
func (t *Table[T]) bind(s *lifecycle.Stamper) {
	t.hook = nil
	if t.mapping.Hook != nil {
		t.hook = t.mapping.Hook(s)
	}
}

func (t *Table[T]) columns() []string {
	cols := []string{columnID}
	if t.stamped {
		cols = append(cols, columnCreatedAt, columnUpdatedAt)
	}
	return append(cols, t.mapping.Columns...)
}

// acquire read-locks the backend and returns the open database. The caller
// must call release when err is nil.
func (t *Table[T]) acquire() (db *sql.DB, release func(), err error) {
	if t.backend == nil {
		return nil, nil, types.ErrDetached
	}
	t.backend.mu.RLock()
	if !t.backend.attached {
		t.backend.mu.RUnlock()
		return nil, nil, types.ErrDetached
	}
	return t.backend.db, t.backend.mu.RUnlock, nil
}

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no row matches.
func (t *Table[T]) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, release, err := t.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(t.columns(), ", "), t.mapping.Name, columnID)
	e, err := t.hydrate(db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting %s %s: %w", t.mapping.Name, id, err)
	}
	return e, nil
}

// Set persists an entity. An empty id inserts: the before-write hook runs
// with insert=true and must assign the identifier. A non-empty id updates
// the existing row; the hook runs with insert=false and the stored
// created_at is kept. Returns ErrNotFound when updating a missing row.
func (t *Table[T]) Set(id string, data any) (string, error) {
	e, ok := data.(T)
	if !ok {
		return "", types.ErrInvalidData
	}
	db, release, err := t.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	insert := id == ""
	if !insert {
		if err := t.loadExisting(db, id, e); err != nil {
			return "", err
		}
	}

	if t.hook != nil {
		if e, err = t.hook(e, insert); err != nil {
			return "", fmt.Errorf("before-write hook on %s: %w", t.mapping.Name, err)
		}
	}

	if insert {
		id = e.GetID()
		if id == "" {
			return "", types.ErrInvalidID
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if insert {
		_, err = tx.Exec(t.insertSQL(), t.insertArgs(e)...)
		if err != nil {
			return "", fmt.Errorf("persisting %s: %w", t.mapping.Name, err)
		}
	} else {
		res, err := tx.Exec(t.updateSQL(), t.updateArgs(id, e)...)
		if err != nil {
			return "", fmt.Errorf("persisting %s: %w", t.mapping.Name, err)
		}
		// The row may have been deleted since loadExisting.
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("persisting %s: %w", t.mapping.Name, err)
		}
		if n == 0 {
			return "", types.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing %s: %w", t.mapping.Name, err)
	}

	t.backend.logger.Debug("entity written", "table", t.mapping.Name, "id", id, "insert", insert)
	return id, nil
}

// loadExisting checks that id exists, sets it on e, and restores the stored
// created_at so the update path never rewrites it.
func (t *Table[T]) loadExisting(db *sql.DB, id string, e T) error {
	var createdAt sql.NullString
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", columnID, t.mapping.Name, columnID)
	dest := []any{new(string)}
	if t.stamped {
		query = fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?",
			columnID, columnCreatedAt, t.mapping.Name, columnID)
		dest = append(dest, &createdAt)
	}

	if err := db.QueryRow(query, id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		return fmt.Errorf("checking %s existence: %w", t.mapping.Name, err)
	}

	e.SetID(id)
	if ts, ok := any(e).(timestamped); ok && createdAt.Valid {
		at, err := time.Parse(timeLayout, createdAt.String)
		if err != nil {
			return fmt.Errorf("parsing created_at: %w", err)
		}
		ts.SetCreatedAt(at)
	}
	return nil
}

func (t *Table[T]) insertSQL() string {
	cols := t.columns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.mapping.Name, strings.Join(cols, ", "), marks)
}

func (t *Table[T]) insertArgs(e T) []any {
	args := []any{e.GetID()}
	if ts, ok := any(e).(timestamped); ok {
		args = append(args,
			formatTime(ts.GetCreatedAt()),
			formatTime(ts.GetUpdatedAt()))
	}
	return append(args, t.mapping.Values(e)...)
}

func (t *Table[T]) updateSQL() string {
	var sets []string
	if t.stamped {
		sets = append(sets, columnUpdatedAt+" = ?")
	}
	for _, c := range t.mapping.Columns {
		sets = append(sets, c+" = ?")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		t.mapping.Name, strings.Join(sets, ", "), columnID)
}

func (t *Table[T]) updateArgs(id string, e T) []any {
	var args []any
	if ts, ok := any(e).(timestamped); ok {
		args = append(args, formatTime(ts.GetUpdatedAt()))
	}
	args = append(args, t.mapping.Values(e)...)
	return append(args, id)
}

// Delete removes an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no row matches.
func (t *Table[T]) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	res, err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.mapping.Name, columnID), id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", t.mapping.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", t.mapping.Name, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Fetch returns entities whose columns equal the filter values. Keys must
// be id or data columns; "limit" and "offset" take ints. Rows are ordered
// by created_at then id for timestamped tables, otherwise by id.
func (t *Table[T]) Fetch(filter map[string]any) ([]any, error) {
	db, release, err := t.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns(), ", "), t.mapping.Name)
	var conditions []string
	var args []any
	limit, offset := 0, 0

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := filter[k]
		switch k {
		case "limit", "offset":
			n, ok := v.(int)
			if !ok {
				return nil, types.ErrInvalidFilter
			}
			if k == "limit" {
				limit = n
			} else {
				offset = n
			}
			continue
		}
		if k != columnID && !slices.Contains(t.mapping.Columns, k) {
			return nil, fmt.Errorf("%w: unknown column %q", types.ErrInvalidFilter, k)
		}
		switch v.(type) {
		case string, int, int64, float64, bool:
		default:
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, k+" = ?")
		args = append(args, v)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if t.stamped {
		query += " ORDER BY " + columnCreatedAt + ", " + columnID
	} else {
		query += " ORDER BY " + columnID
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", offset)
		}
	} else if offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", t.mapping.Name, err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		e, err := t.hydrate(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating %s: %w", t.mapping.Name, err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t.mapping.Name, err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// hydrate converts a row selected with t.columns() into an entity.
func (t *Table[T]) hydrate(row scanner) (T, error) {
	e := t.mapping.New()
	var id, createdAt, updatedAt string

	dest := []any{&id}
	if t.stamped {
		dest = append(dest, &createdAt, &updatedAt)
	}
	dest = append(dest, t.mapping.Fields(e)...)

	if err := row.Scan(dest...); err != nil {
		return e, err
	}

	e.SetID(id)
	if ts, ok := any(e).(timestamped); ok {
		c, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return e, fmt.Errorf("parsing created_at: %w", err)
		}
		u, err := time.Parse(timeLayout, updatedAt)
		if err != nil {
			return e, fmt.Errorf("parsing updated_at: %w", err)
		}
		ts.SetCreatedAt(c)
		ts.SetUpdatedAt(u)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
