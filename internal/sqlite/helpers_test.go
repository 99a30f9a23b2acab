package sqlite

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/entitykit/pkg/lifecycle"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

const (
	tableNotes  = "notes"
	tableLabels = "labels"
)

type note struct {
	types.Model
	Body     string
	Priority int64
}

type label struct {
	types.Identity
	Name string
}

func noteTable() *Table[*note] {
	return NewTable(Mapping[*note]{
		Name: tableNotes,
		DDL: `CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    body TEXT NOT NULL,
    priority INTEGER NOT NULL
);`,
		Columns: []string{"body", "priority"},
		New:     func() *note { return &note{} },
		Values:  func(n *note) []any { return []any{n.Body, n.Priority} },
		Fields:  func(n *note) []any { return []any{&n.Body, &n.Priority} },
		Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*note] {
			return lifecycle.IdentifierAndTimestampHook[*note](s)
		},
	})
}

func labelTable() *Table[*label] {
	return NewTable(Mapping[*label]{
		Name:    tableLabels,
		DDL:     `CREATE TABLE IF NOT EXISTS labels (id TEXT PRIMARY KEY, name TEXT NOT NULL);`,
		Columns: []string{"name"},
		New:     func() *label { return &label{} },
		Values:  func(l *label) []any { return []any{l.Name} },
		Fields:  func(l *label) []any { return []any{&l.Name} },
		Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*label] {
			return lifecycle.IdentifierHook[*label](s)
		},
	})
}

// tickClock advances by one second on every reading.
type tickClock struct {
	mu   sync.Mutex
	next time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

var clockStart = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

// attachMemory attaches an in-memory backend with the note and label tables
// and a ticking clock.
func attachMemory(t *testing.T) *Backend {
	t.Helper()
	clock := &tickClock{next: clockStart}
	b := NewBackend(
		InMemory(),
		WithTables(noteTable(), labelTable()),
		WithStamperOptions(lifecycle.WithClock(clock.Now)),
	)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func mustTable(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}
