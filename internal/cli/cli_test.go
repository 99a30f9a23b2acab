package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/entitykit/internal/catalog"
	"github.com/mesh-intelligence/entitykit/internal/paths"
	"github.com/mesh-intelligence/entitykit/internal/sqlite"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
	stdin     string
}

type result struct {
	stdout string
	stderr string
	code   int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv(envLogLevel, "")

	root := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(full, strings.NewReader(e.stdin), &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "args %v: stderr %s", args, r.stderr)
	return r.stdout
}

func (e *testEnv) createCustomer(name string) catalog.Customer {
	e.t.Helper()
	out := e.mustRun("--json", "create", catalog.TableCustomers, `{"name":"`+name+`","email":"x@example.com"}`)
	var c catalog.Customer
	require.NoError(e.t, json.Unmarshal([]byte(out), &c))
	return c
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "entitykit v"+Version)
	assert.NoDirExists(t, env.configDir, "version has no side effects")
}

func TestInitWritesConfigAndDatabase(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("init")
	assert.Contains(t, out, "entitykit initialized")

	configPath := filepath.Join(env.configDir, configFileBase)
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "uuid_version: v7")
	assert.FileExists(t, filepath.Join(env.dataDir, sqlite.DatabaseFile))

	custom := []byte("backend: sqlite\nlog_level: info\n")
	require.NoError(t, os.WriteFile(configPath, custom, 0o644))
	env.mustRun("init")

	data, err = os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, custom, data, "init keeps an existing config.yaml")
}

func TestCreateStampsAndUpdateKeepsCreatedAt(t *testing.T) {
	env := newTestEnv(t)

	created := env.createCustomer("Ada")
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	out := env.mustRun("--json", "update", catalog.TableCustomers, created.ID, `{"name":"Ada Lovelace","email":"ada@example.com"}`)
	var updated catalog.Customer
	require.NoError(t, json.Unmarshal([]byte(out), &updated))

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	out = env.mustRun("get", catalog.TableCustomers, created.ID)
	var got catalog.Customer
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestCreateIgnoresCallerSuppliedIdentity(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("--json", "create", catalog.TablePosts,
		`{"id":"mine","created_at":"2001-01-01T00:00:00Z","title":"t","body":"b"}`)

	var p catalog.Post
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.NotEqual(t, "mine", p.ID)
	assert.NotEqual(t, 2001, p.CreatedAt.Year())
}

func TestCreateTextOutputAndStdin(t *testing.T) {
	env := newTestEnv(t)
	env.stdin = `{"label":"go"}`

	out := env.mustRun("create", catalog.TableTags, "-")
	assert.True(t, strings.HasPrefix(out, "Created tags: "), out)
}

func TestListFiltersAndPages(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCustomer("Grace")

	env.mustRun("create", catalog.TableOrders, `{"customer_id":"`+c.ID+`","total_cents":100}`)
	env.mustRun("create", catalog.TableOrders, `{"customer_id":"`+c.ID+`","total_cents":200,"state":"paid"}`)
	env.mustRun("create", catalog.TableOrders, `{"customer_id":"`+c.ID+`","total_cents":300,"state":"paid"}`)

	var orders []catalog.Order
	out := env.mustRun("list", catalog.TableOrders, "state=paid")
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	assert.Len(t, orders, 2)

	orders = nil
	out = env.mustRun("list", catalog.TableOrders, "limit=1", "offset=1")
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, int64(200), orders[0].TotalCents)

	orders = nil
	out = env.mustRun("list", catalog.TableOrders, "total_cents=100")
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, catalog.OrderStatePending, orders[0].State)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCustomer("Linus")

	out := env.mustRun("delete", catalog.TableCustomers, c.ID)
	assert.Contains(t, out, "Deleted customers: "+c.ID)

	r := env.run("get", catalog.TableCustomers, c.ID)
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrNotFound.Error())
}

func TestUserErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown table on create", args: []string{"create", "widgets", "{}"}, wantErr: "widgets"},
		{name: "unknown table on get", args: []string{"get", "widgets", "x"}, wantErr: "valid: customers"},
		{name: "malformed json", args: []string{"create", catalog.TableCustomers, "{"}, wantErr: types.ErrInvalidData.Error()},
		{name: "hook validation", args: []string{"create", catalog.TableCustomers, `{"email":"a@b"}`}, wantErr: "customer name is required"},
		{name: "update missing row", args: []string{"update", catalog.TableCustomers, "nope", `{"name":"x"}`}, wantErr: types.ErrNotFound.Error()},
		{name: "unknown filter column", args: []string{"list", catalog.TableCustomers, "shoe_size=9"}, wantErr: "shoe_size"},
		{name: "filter without equals", args: []string{"list", catalog.TableCustomers, "name"}, wantErr: "expected key=value"},
		{name: "missing args", args: []string{"get", catalog.TableCustomers}, wantErr: "accepts 2 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.run(tt.args...)
			assert.Equal(t, exitUserError, r.code)
			assert.Contains(t, r.stderr, tt.wantErr)
		})
	}
}

func TestRelationsText(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("relations")

	assert.Contains(t, out, "orders -> customers\n")
	assert.Contains(t, out, "posts -> post_tags -> tags\n")
	assert.Contains(t, out, "    posts(id) -> post_tags(post_id) [belongs_to]\n")
	assert.Contains(t, out, "    post_tags(tag_id) -> tags(id) [belongs_to, owner]\n")
	assert.Contains(t, out, "8 descriptors over customers, orders, post_tags, posts, tags")
}

func TestRelationsJSON(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("--json", "relations")

	var descs []types.RelationDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.Len(t, descs, len(catalog.Specs()))

	var via int
	for _, d := range descs {
		if d.Via != nil {
			via++
			assert.Equal(t, catalog.TablePostTags, d.Junction)
			assert.Equal(t, d.Source, d.Via.FromTable)
			assert.Equal(t, d.Target, d.Def.ToTable)
		}
	}
	assert.Equal(t, 2, via)
}

func TestInvalidConfigIsUserError(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileBase),
		[]byte("backend: sqlite\nuuid_version: v9\n"), 0o644))

	r := env.run("relations")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrUUIDVersionUnknown.Error())
}

func TestConfigDrivesStamper(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileBase),
		[]byte("backend: sqlite\nprecision: 1s\n"), 0o644))

	c := env.createCustomer("Barbara")
	assert.Zero(t, c.CreatedAt.Nanosecond(), "precision truncates sampled timestamps")
}

func TestLogLevelFromEnvironment(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(envLogLevel, "debug")

	r := env.run("relations")
	require.Equal(t, exitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stderr, "config loaded")
	assert.Contains(t, r.stderr, "relation registered")
}
