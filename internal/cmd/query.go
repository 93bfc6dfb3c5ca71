package cmd

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"
	"github.com/willfong/mysqldb/internal/database"
	"github.com/willfong/mysqldb/internal/ui"
)

var (
	queryBindings bindingFlags
	queryRaw      bool
	execBindings  bindingFlags
	execRaw       bool
)

// queryCmd runs a row-returning template
var queryCmd = &cobra.Command{
	Use:   "query TEMPLATE",
	Short: "Run a SELECT template and print the rows",
	Long: `Substitute sanitized bindings into TEMPLATE and print the result set.

Each :key: token is replaced by the escaped, quoted value bound to key.
Unmatched tokens are left in place unless --strict is set.

Examples:
  mysqldb query 'SELECT * FROM users WHERE id = :id:' --set id=42
  mysqldb query 'SELECT * FROM users WHERE id IN (:ids:)' --values '{ids: [1, 2, 3]}'
  mysqldb query --raw 'SHOW TABLES'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

// execCmd runs a template that does not return rows
var execCmd = &cobra.Command{
	Use:   "exec TEMPLATE",
	Short: "Run a statement template and print the affected row count",
	Long: `Substitute sanitized bindings into TEMPLATE and execute it.

Examples:
  mysqldb exec 'UPDATE users SET name = :name: WHERE id = :id:' -s id=42 -s name=Ann
  mysqldb exec --raw 'TRUNCATE TABLE sessions'`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)

	queryBindings.register(queryCmd)
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "send TEMPLATE verbatim, without substitution")

	execBindings.register(execCmd)
	execCmd.Flags().BoolVar(&execRaw, "raw", false, "send TEMPLATE verbatim, without substitution")
}

func runQuery(cmd *cobra.Command, args []string) error {
	template := args[0]

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		var (
			rs  *database.ResultSet
			err error
		)
		if queryRaw {
			rs, err = client.KnownQuery(ctx, template)
		} else {
			b, berr := queryBindings.bindings("Query", cmd.InOrStdin())
			if berr != nil {
				return berr
			}
			rs, err = client.Query(ctx, template, b)
		}
		if err != nil {
			return err
		}

		printResultSet(u, rs)
		return nil
	})
}

func runExec(cmd *cobra.Command, args []string) error {
	template := args[0]

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		var (
			result sql.Result
			err    error
		)
		if execRaw {
			result, err = client.KnownExec(ctx, template)
		} else {
			b, berr := execBindings.bindings("Exec", cmd.InOrStdin())
			if berr != nil {
				return berr
			}
			result, err = client.Exec(ctx, template, b)
		}
		if err != nil {
			return err
		}

		printResult(u, result)
		return nil
	})
}
