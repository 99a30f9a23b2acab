package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <json|->",
		Short: "Insert an entity",
		Long: `Create inserts an entity into the table. The before-write hook assigns
the identifier and stamps created_at and updated_at; values for those
fields in the payload are overwritten. Pass "-" to read JSON from stdin.

Example:
  entitykit create customers '{"name":"Ada","email":"ada@example.com"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.write(cmd, args[0], "", args[1])
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> <json|->",
		Short: "Replace an entity's fields",
		Long: `Update replaces the data fields of an existing entity. The stored
created_at is kept and updated_at is refreshed.

Example:
  entitykit update orders 0190... '{"customer_id":"0190...","state":"paid"}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[1] == "" {
				return userError(fmt.Errorf("update: id must not be empty"))
			}
			return a.write(cmd, args[0], args[1], args[2])
		},
	}
}

// write runs Table.Set and prints the stored entity. An empty id inserts.
func (a *app) write(cmd *cobra.Command, tableName, id, payload string) error {
	data, err := readPayload(payload, cmd.InOrStdin())
	if err != nil {
		return sysError(fmt.Errorf("read payload: %w", err))
	}
	entity, err := parseEntityJSON(tableName, data)
	if err != nil {
		return classify(err)
	}

	table, release, err := a.openTable(tableName)
	if err != nil {
		return err
	}
	defer release()

	verb := "Created"
	if id != "" {
		verb = "Updated"
	}
	id, err = table.Set(id, entity)
	if err != nil {
		return classify(fmt.Errorf("write %s: %w", tableName, err))
	}

	stored, err := table.Get(id)
	if err != nil {
		return classify(err)
	}
	if a.jsonMode {
		return printJSON(cmd.OutOrStdout(), stored)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", verb, tableName, id)
	return nil
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Get an entity by ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, release, err := a.openTable(args[0])
			if err != nil {
				return err
			}
			defer release()

			entity, err := table.Get(args[1])
			if err != nil {
				return classify(fmt.Errorf("entity %q in %s: %w", args[1], args[0], err))
			}
			return printJSON(cmd.OutOrStdout(), entity)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [key=value...]",
		Short: "List entities with optional filter",
		Long: `List queries entities from the table. Filters are key=value pairs that
are ANDed together; limit=N and offset=N page the result.

Example:
  entitykit list orders state=paid
  entitykit list post_tags post_id=0190... limit=10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return classify(err)
			}

			table, release, err := a.openTable(args[0])
			if err != nil {
				return err
			}
			defer release()

			entities, err := table.Fetch(filter)
			if err != nil {
				return classify(fmt.Errorf("list %s: %w", args[0], err))
			}
			return printJSON(cmd.OutOrStdout(), entities)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete an entity by ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, release, err := a.openTable(args[0])
			if err != nil {
				return err
			}
			defer release()

			if err := table.Delete(args[1]); err != nil {
				return classify(fmt.Errorf("delete %q from %s: %w", args[1], args[0], err))
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[1]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", args[0], args[1])
			return nil
		},
	}
}
