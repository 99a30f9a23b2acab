package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entitykit/internal/catalog"
	"github.com/mesh-intelligence/entitykit/pkg/relation"
)

func newRelationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relations",
		Short: "Print the composed relation descriptors",
		Long: `Relations declares the catalog relations, composes every descriptor the
catalog registers, and prints them. Junction-mediated descriptors list
both hops; the first hop is the reverse of the junction's declared relation.`,
		Args: cobra.NoArgs,
		RunE: a.runRelations,
	}
}

func (a *app) runRelations(cmd *cobra.Command, _ []string) error {
	reg, err := catalog.NewRegistry(relation.WithLogger(a.logger))
	if err != nil {
		return sysError(fmt.Errorf("compose relations: %w", err))
	}
	descs := reg.Descriptors()

	out := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(out, descs)
	}

	for _, d := range descs {
		fmt.Fprintln(out, d.String())
		for _, hop := range d.Hops() {
			owner := ""
			if hop.IsOwner {
				owner = ", owner"
			}
			fmt.Fprintf(out, "    %s [%s%s]\n", hop.String(), hop.Type, owner)
		}
	}
	fmt.Fprintf(out, "%d descriptors over %s\n", len(descs), strings.Join(reg.Entities(), ", "))
	return nil
}
