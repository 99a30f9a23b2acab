package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the entitykit release version.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/entitykit"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the entitykit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "entitykit v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
