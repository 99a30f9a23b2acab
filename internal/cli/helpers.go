package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/entitykit/internal/catalog"
	"github.com/mesh-intelligence/entitykit/internal/sqlite"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// validTableNamesStr is a comma-separated list of valid table names for
// error output.
var validTableNamesStr = strings.Join(catalog.TableNames, ", ")

// attachBackend creates a SQLite backend over the catalog tables and
// attaches it. The caller must Detach the backend.
func (a *app) attachBackend() (*sqlite.Backend, error) {
	backend := sqlite.NewBackend(
		sqlite.WithTables(catalog.Tables()...),
		sqlite.WithLogger(a.logger),
	)
	if err := backend.Attach(a.config); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// openTable attaches the backend and resolves name. The returned release
// function detaches the backend.
func (a *app) openTable(name string) (types.Table, func(), error) {
	backend, err := a.attachBackend()
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := backend.Detach(); err != nil {
			a.logger.Warn("detach failed", "error", err)
		}
	}

	table, err := backend.GetTable(name)
	if err != nil {
		release()
		return nil, nil, userError(fmt.Errorf("unknown table %q (valid: %s)", name, validTableNamesStr))
	}
	return table, release, nil
}

// parseEntityJSON unmarshals data into the entity type stored in table.
func parseEntityJSON(table string, data []byte) (any, error) {
	e, err := catalog.New(table)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidData, err)
	}
	return e, nil
}

// readPayload returns arg, or the whole of stdin when arg is "-".
func readPayload(arg string, stdin io.Reader) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	return io.ReadAll(stdin)
}

// parseFilter turns key=value arguments into a Fetch filter. Integer and
// boolean literals keep their type; everything else is a string.
func parseFilter(args []string) (map[string]any, error) {
	filter := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (expected key=value)", types.ErrInvalidFilter, arg)
		}
		if n, err := strconv.Atoi(value); err == nil {
			filter[key] = n
		} else if value == "true" || value == "false" {
			filter[key] = value == "true"
		} else {
			filter[key] = value
		}
	}
	return filter, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}
