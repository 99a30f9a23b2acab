package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain builds the entitykit binary once before running tests.
func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "entitykit-test-*")
	if err != nil {
		buildErr = err
		os.Exit(1)
	}

	entitykitBin, buildErr = buildBinary(tmpDir)
	code := m.Run()

	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestInitCreatesDatabase(t *testing.T) {
	env := NewTestEnv(t)

	r := env.MustRun("init")
	if !strings.Contains(r.Stdout, "entitykit initialized") {
		t.Errorf("unexpected init output: %q", r.Stdout)
	}
	if _, err := os.Stat(filepath.Join(env.DataDir, "entitykit.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestCustomerOrderLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	c := ParseJSON[Customer](t, env.MustRun("--json", "create", "customers",
		`{"name":"Ada","email":"ada@example.com"}`).Stdout)
	require.NotEmpty(t, c.ID)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt, "insert stamps both fields from one instant")

	o := ParseJSON[Order](t, env.MustRun("--json", "create", "orders",
		`{"customer_id":"`+c.ID+`","total_cents":1250}`).Stdout)
	assert.Equal(t, "pending", o.State)

	time.Sleep(2 * time.Millisecond)
	updated := ParseJSON[Order](t, env.MustRun("--json", "update", "orders", o.ID,
		`{"customer_id":"`+c.ID+`","total_cents":1250,"state":"paid"}`).Stdout)
	assert.Equal(t, o.ID, updated.ID)
	assert.Equal(t, o.CreatedAt, updated.CreatedAt)
	assert.NotEqual(t, o.UpdatedAt, updated.UpdatedAt)
	assert.Equal(t, "paid", updated.State)

	paid := ParseJSON[[]Order](t, env.MustRun("list", "orders", "state=paid").Stdout)
	require.Len(t, paid, 1)
	assert.Equal(t, o.ID, paid[0].ID)

	r := env.Run("delete", "customers", c.ID)
	assert.Equal(t, 2, r.ExitCode, "orders restrict customer deletion")
}

func TestIdentifiersAreUniqueAndOrdered(t *testing.T) {
	env := NewTestEnv(t)

	var ids []string
	for range 5 {
		r := env.MustRun("create", "tags", `{"label":"t`+time.Now().Format("150405.000000000")+`"}`)
		_, id, ok := strings.Cut(strings.TrimSpace(r.Stdout), ": ")
		require.True(t, ok, r.Stdout)
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		assert.NotEqual(t, ids[i-1], ids[i])
		assert.Less(t, ids[i-1], ids[i], "v7 identifiers sort by creation time")
	}
}

func TestUUIDv4FromConfig(t *testing.T) {
	env := NewTestEnv(t, "uuid_version: v4")

	r := env.MustRun("create", "tags", `{"label":"random"}`)
	_, id, _ := strings.Cut(strings.TrimSpace(r.Stdout), ": ")
	require.Len(t, id, 36)
	assert.Equal(t, byte('4'), id[14], "version nibble")
}

func TestRelations(t *testing.T) {
	env := NewTestEnv(t)

	descs := ParseJSON[[]Descriptor](t, env.MustRun("--json", "relations").Stdout)
	require.Len(t, descs, 8)

	for _, d := range descs {
		if d.Source != "posts" || d.Target != "tags" {
			continue
		}
		require.NotNil(t, d.Via)
		assert.Equal(t, "post_tags", d.Junction)
		assert.Equal(t, "posts", d.Via.FromTable)
		assert.Equal(t, "post_tags", d.Via.ToTable)
		assert.Equal(t, []string{"id"}, d.Via.FromColumns)
		assert.Equal(t, []string{"post_id"}, d.Via.ToColumns)
		assert.False(t, d.Via.IsOwner)
		assert.Equal(t, "tags", d.Def.ToTable)
		return
	}
	t.Fatal("posts -> tags descriptor missing")
}

func TestExitCodes(t *testing.T) {
	env := NewTestEnv(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown table", []string{"get", "widgets", "x"}, 1},
		{"missing entity", []string{"get", "customers", "nope"}, 1},
		{"hook rejects", []string{"create", "orders", `{"total_cents":1}`}, 1},
		{"unknown command", []string{"frobnicate"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.Run(tt.args...)
			assert.Equal(t, tt.code, r.ExitCode, r.Stderr)
		})
	}
}

func TestBadConfigFails(t *testing.T) {
	env := NewTestEnv(t, "log_level: loud")
	r := env.Run("relations")
	assert.Equal(t, 1, r.ExitCode)
	assert.Contains(t, r.Stderr, "unknown log level")
}
