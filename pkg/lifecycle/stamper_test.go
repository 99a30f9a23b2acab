package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/entitykit/pkg/types"
)

type post struct {
	types.Model
	Title string
}

type tag struct {
	types.Identity
	Label string
}

type auditRow struct {
	types.Timestamps
	Action string
}

// stepClock returns base on the first call and advances by step on each
// subsequent call. It counts calls.
type stepClock struct {
	mu    sync.Mutex
	base  time.Time
	step  time.Duration
	calls int
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

func newStepStamper(t *testing.T, base time.Time, step time.Duration) (*Stamper, *stepClock) {
	t.Helper()
	clock := &stepClock{base: base, step: step}
	s, err := NewStamper(WithClock(clock.Now))
	require.NoError(t, err)
	return s, clock
}

var base = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func TestStampIDOnInsertAssignsUniqueIDs(t *testing.T) {
	s, err := NewStamper()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		e := &tag{Label: fmt.Sprintf("t%d", i)}
		s.StampID(e, true)
		require.NotEmpty(t, e.ID)
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestStampIDOnUpdateLeavesIDUntouched(t *testing.T) {
	s, err := NewStamper()
	require.NoError(t, err)

	e := &tag{Identity: types.Identity{ID: "existing"}}
	s.StampID(e, false)
	assert.Equal(t, "existing", e.ID)

	empty := &tag{}
	s.StampID(empty, false)
	assert.Empty(t, empty.ID, "update must not invent an identifier")
}

func TestStampTimestampsInsert(t *testing.T) {
	s, clock := newStepStamper(t, base, time.Second)

	e := &auditRow{Action: "login"}
	s.StampTimestamps(e, true)

	assert.Equal(t, base, e.CreatedAt)
	assert.Equal(t, base, e.UpdatedAt)
	assert.Equal(t, 1, clock.calls, "one clock read per call")
}

func TestStampTimestampsUpdateAdvancesUpdatedAt(t *testing.T) {
	s, _ := newStepStamper(t, base, time.Second)

	e := &auditRow{}
	s.StampTimestamps(e, true)
	created := e.CreatedAt
	prev := e.UpdatedAt

	for i := 0; i < 3; i++ {
		s.StampTimestamps(e, false)
		assert.Equal(t, created, e.CreatedAt, "CreatedAt must not change on update")
		assert.True(t, e.UpdatedAt.After(prev), "UpdatedAt should advance")
		assert.False(t, e.UpdatedAt.Before(e.CreatedAt))
		prev = e.UpdatedAt
	}
}

func TestStampAllSharesOneClockRead(t *testing.T) {
	s, clock := newStepStamper(t, base, time.Hour)

	e := &post{Title: "hello"}
	s.StampAll(e, true)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, base, e.CreatedAt)
	assert.Equal(t, base, e.UpdatedAt)
	assert.Equal(t, 1, clock.calls)
}

func TestStampAllUpdate(t *testing.T) {
	s, _ := newStepStamper(t, base, time.Minute)

	e := &post{}
	s.StampAll(e, true)
	id := e.ID

	s.StampAll(e, false)

	assert.Equal(t, id, e.ID)
	assert.Equal(t, base, e.CreatedAt)
	assert.Equal(t, base.Add(time.Minute), e.UpdatedAt)
}

func TestStamperIDFunc(t *testing.T) {
	n := 0
	s, err := NewStamper(WithIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	require.NoError(t, err)

	a, b := &tag{}, &tag{}
	s.StampID(a, true)
	s.StampID(b, true)

	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "id-2", b.ID)
}

func TestStamperUUIDVersions(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    uuid.Version
	}{
		{name: "default is v7", version: "", want: 7},
		{name: "explicit v7", version: types.UUIDv7, want: 7},
		{name: "v4", version: types.UUIDv4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStamper(WithUUIDVersion(tt.version))
			require.NoError(t, err)

			parsed, err := uuid.Parse(s.NewID())
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed.Version())
		})
	}
}

func TestStamperOptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr error
	}{
		{name: "nil clock", opt: WithClock(nil), wantErr: ErrNilSource},
		{name: "nil id func", opt: WithIDFunc(nil), wantErr: ErrNilSource},
		{name: "unknown uuid version", opt: WithUUIDVersion("v1"), wantErr: types.ErrUUIDVersionUnknown},
		{name: "negative precision", opt: WithPrecision(-time.Second), wantErr: types.ErrPrecisionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStamper(tt.opt)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestStamperPrecisionAndLocation(t *testing.T) {
	raw := time.Date(2026, 10, 18, 9, 30, 15, 987654321, time.UTC)
	s, err := NewStamper(
		WithClock(func() time.Time { return raw }),
		WithPrecision(time.Second),
	)
	require.NoError(t, err)

	e := &auditRow{}
	s.StampTimestamps(e, true)

	assert.Equal(t, time.Date(2026, 10, 18, 9, 30, 15, 0, time.UTC), e.CreatedAt)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
}

func TestStamperPrecisionCollapsesUpdatesInOneInterval(t *testing.T) {
	readings := []time.Time{
		base.Add(100 * time.Millisecond),
		base.Add(400 * time.Millisecond),
		base.Add(1100 * time.Millisecond),
	}
	var i int
	s, err := NewStamper(
		WithClock(func() time.Time { r := readings[i]; i++; return r }),
		WithPrecision(time.Second),
	)
	require.NoError(t, err)

	e := &auditRow{}
	s.StampTimestamps(e, true)
	first := e.UpdatedAt

	s.StampTimestamps(e, false)
	assert.Equal(t, first, e.UpdatedAt, "same interval, same updated_at")

	s.StampTimestamps(e, false)
	assert.True(t, e.UpdatedAt.After(first), "next interval advances updated_at")
	assert.Equal(t, base, e.CreatedAt)
}

func TestNewStamperFromConfig(t *testing.T) {
	s, err := NewStamperFromConfig(
		types.Config{Backend: types.BackendSQLite, UUIDVersion: types.UUIDv4, Precision: "1ms"},
		WithClock(func() time.Time { return base.Add(1500 * time.Microsecond) }),
	)
	require.NoError(t, err)

	assert.Equal(t, base.Add(time.Millisecond), s.Now())
	parsed, err := uuid.Parse(s.NewID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	_, err = NewStamperFromConfig(types.Config{Backend: types.BackendSQLite, Precision: "nope"})
	assert.ErrorIs(t, err, types.ErrPrecisionInvalid)

	_, err = NewStamperFromConfig(types.Config{Backend: types.BackendSQLite, Location: "Not/AZone"})
	assert.ErrorIs(t, err, types.ErrLocationUnknown)
}

func TestStamperConcurrentUse(t *testing.T) {
	s, err := NewStamper()
	require.NoError(t, err)

	const workers = 16
	const perWorker = 100
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				e := &post{}
				s.StampAll(e, true)
				ids <- e.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
