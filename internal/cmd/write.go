package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/willfong/mysqldb/internal/database"
	"github.com/willfong/mysqldb/internal/sanitize"
	"github.com/willfong/mysqldb/internal/ui"
)

var (
	insertBindings bindingFlags
	updateColumn   string
	deleteLimit    int
)

var insertCmd = &cobra.Command{
	Use:   "insert TABLE",
	Short: "Insert one row built from a mapping of column to value",
	Long: `Insert one row into TABLE. Columns are taken in the order given.

The mapping must be keyed. A YAML or JSON sequence is rejected with a
not_mapping error.

Examples:
  mysqldb insert users --values '{id: 7, name: Ann, active: true}'
  mysqldb insert users -f row.yaml -s updated_by=cli
  echo '{"id": 8, "name": null}' | mysqldb insert users -f -`,
	Args: cobra.ExactArgs(1),
	RunE: runInsert,
}

var updateCmd = &cobra.Command{
	Use:   "update TABLE KEY_COLUMN KEY NEW_VALUE",
	Short: "Change a value in the rows whose KEY_COLUMN equals KEY",
	Long: `Without --column, KEY_COLUMN itself is set to NEW_VALUE, re-keying the
matching rows. With --column, that column is set instead.

Examples:
  mysqldb update users email old@example.com new@example.com
  mysqldb update users id 42 Ann --column name`,
	Args: cobra.ExactArgs(4),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete TABLE KEY_COLUMN KEY",
	Short: "Delete the rows whose KEY_COLUMN equals KEY",
	Long: `Delete matching rows. --limit caps how many are removed; 0 removes all.

Example:
  mysqldb delete sessions user_id 42 --limit 1`,
	Args: cobra.ExactArgs(3),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)

	insertBindings.register(insertCmd)
	updateCmd.Flags().StringVarP(&updateColumn, "column", "c", "", "column to set (default: KEY_COLUMN)")
	deleteCmd.Flags().IntVarP(&deleteLimit, "limit", "n", 0, "maximum rows to delete (0 = no limit)")
}

func runInsert(cmd *cobra.Command, args []string) error {
	table := args[0]

	row, err := insertBindings.bindings("AddRow", cmd.InOrStdin())
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		result, err := client.AddRow(ctx, table, row)
		if err != nil {
			return err
		}
		printResult(u, result)
		return nil
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	table, keyColumn := args[0], args[1]
	key, newValue := sanitize.ParseScalar(args[2]), sanitize.ParseScalar(args[3])

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		var (
			n   int64
			err error
		)
		if updateColumn == "" {
			n, err = client.ChangeValue(ctx, table, keyColumn, key, newValue)
		} else {
			n, err = client.SetValue(ctx, table, keyColumn, key, updateColumn, newValue)
		}
		if err != nil {
			return err
		}
		u.Status(u.Success(fmt.Sprintf("%d rows updated", n)))
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	table, keyColumn, key := args[0], args[1], sanitize.ParseScalar(args[2])

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		n, err := client.DeleteRow(ctx, table, keyColumn, key, deleteLimit)
		if err != nil {
			return err
		}
		u.Status(u.Success(fmt.Sprintf("%d rows deleted", n)))
		return nil
	})
}
