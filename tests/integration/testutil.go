// Package integration runs the entitykit binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// entitykitBin is the path to the binary built by TestMain.
	entitykitBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the directory
// holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary compiles ./cmd/entitykit into dir.
func buildBinary(dir string) (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return "", err
	}
	bin := filepath.Join(dir, "entitykit")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/entitykit")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", &BuildError{Err: err, Output: string(out)}
	}
	return bin, nil
}

// TestEnv is an isolated config and data directory pair.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	DataDir   string
	Env       []string
}

// NewTestEnv creates a TestEnv whose config.yaml sets extra (YAML lines)
// after the backend line.
func NewTestEnv(t *testing.T, extra ...string) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build entitykit: %v", buildErr)
	}
	if entitykitBin == "" {
		t.Fatal("entitykit binary not built")
	}

	tempDir := t.TempDir()
	env := &TestEnv{
		t:         t,
		ConfigDir: filepath.Join(tempDir, "config"),
		DataDir:   filepath.Join(tempDir, "data"),
	}

	if err := os.MkdirAll(env.ConfigDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "backend: sqlite\n" + strings.Join(extra, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(env.ConfigDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// CmdResult holds the outcome of one entitykit invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes entitykit with the environment's directories.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	all := append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(entitykitBin, all...)
	cmd.Env = append(os.Environ(), e.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run entitykit: %v", err)
		}
		code = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun executes entitykit and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	r := e.Run(args...)
	if r.ExitCode != 0 {
		e.t.Fatalf("entitykit %v exited %d:\nstdout: %s\nstderr: %s", args, r.ExitCode, r.Stdout, r.Stderr)
	}
	return r
}

// ParseJSON parses JSON output into T.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return v
}

// Record is the stamped part of any entity printed by the CLI.
type Record struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Customer is the customers row as printed by the CLI.
type Customer struct {
	Record
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is the orders row as printed by the CLI.
type Order struct {
	Record
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
	State      string `json:"state"`
}

// Descriptor is a relation descriptor as printed by "relations --json".
type Descriptor struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Junction string `json:"junction"`
	Def      struct {
		FromTable string `json:"from_table"`
		ToTable   string `json:"to_table"`
	} `json:"def"`
	Via *struct {
		FromTable   string   `json:"from_table"`
		ToTable     string   `json:"to_table"`
		FromColumns []string `json:"from_columns"`
		ToColumns   []string `json:"to_columns"`
		IsOwner     bool     `json:"is_owner"`
	} `json:"via"`
}
