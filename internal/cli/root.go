// Package cli implements the entitykit command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries global flag values and the configuration resolved before each
// subcommand runs.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	config types.Config
	logger *slog.Logger
}

// NewRootCmd creates the top-level "entitykit" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:     "entitykit",
		Short:   "Stamp entities and inspect relation metadata",
		Long:    "entitykit writes catalog entities through the before-write lifecycle hook\nand prints the relation descriptors composed at start-up.",
		Version: Version,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.entitykit-db)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newRelationsCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
	)
	return root
}

// Execute runs the root command against os.Args and exits with the
// resulting code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "entitykit:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves directories, loads config.yaml, and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadConfig(a.configDir, a.dataDir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return userError(fmt.Errorf("config: %w", err))
	}

	a.config = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	a.logger.Debug("config loaded", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return nil
}

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// classify marks errors caused by bad input as user errors and everything
// else as system errors.
func classify(err error) error {
	for _, target := range []error{
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidFilter,
		types.ErrTableNotFound,
	} {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// exitCode maps an error to a process exit code. Errors without a code come
// from cobra argument parsing and count as user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
