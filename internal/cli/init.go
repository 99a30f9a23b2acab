package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entitykit/internal/paths"
	"github.com/mesh-intelligence/entitykit/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize entitykit storage",
		Long:  "Create the configuration and data directories, write a default config.yaml,\nand create the catalog tables.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(err)
	}

	configPath, written, err := writeConfigIfMissing(configDir)
	if err != nil {
		return sysError(err)
	}
	if written {
		a.logger.Info("wrote default config", "path", configPath)
	}

	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(out, map[string]string{
			"config":   configPath,
			"database": filepath.Join(a.config.DataDir, sqlite.DatabaseFile),
		})
	}
	fmt.Fprintf(out, "entitykit initialized\nconfig:   %s\ndatabase: %s\n",
		configPath, filepath.Join(a.config.DataDir, sqlite.DatabaseFile))
	return nil
}
