package cmd

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/willfong/mysqldb/internal/database"
	"github.com/willfong/mysqldb/internal/sanitize"
	"github.com/willfong/mysqldb/internal/ui"
)

// ErrNoRow is returned by get and row when nothing matches the key.
var ErrNoRow = errors.New("no matching row")

var (
	getCmd = &cobra.Command{
		Use:   "get TABLE KEY_COLUMN KEY COLUMN",
		Short: "Print one column of the row whose KEY_COLUMN equals KEY",
		Long: `Print the value of COLUMN from the first row where KEY_COLUMN = KEY.

KEY is read like a YAML scalar: 42 is a number, true a boolean, null is
NULL, and anything else a string. Quote it to force a string ('"42"').

Example:
  mysqldb get users id 42 email`,
		Args: cobra.ExactArgs(4),
		RunE: runGet,
	}

	rowCmd = &cobra.Command{
		Use:   "row TABLE KEY_COLUMN KEY",
		Short: "Print the row whose KEY_COLUMN equals KEY",
		Args:  cobra.ExactArgs(3),
		RunE:  runRow,
	}

	existsCmd = &cobra.Command{
		Use:   "exists TABLE KEY_COLUMN KEY",
		Short: "Print true if any row has KEY_COLUMN equal to KEY",
		Long: `Print true or false. With --quiet nothing is printed and the exit
status is 0 when a row exists and 10 when none does. Failures exit with
their error code (1 to 7), as for every command.

Example:
  mysqldb exists users email ann@example.com -q && echo taken`,
		Args: cobra.ExactArgs(3),
		RunE: runExists,
	}

	existsQuiet bool
)

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(rowCmd)
	rootCmd.AddCommand(existsCmd)

	existsCmd.Flags().BoolVarP(&existsQuiet, "quiet", "q", false, "report only through the exit status")
}

func runGet(cmd *cobra.Command, args []string) error {
	table, keyColumn, key, column := args[0], args[1], sanitize.ParseScalar(args[2]), args[3]

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		exists, err := client.ValueExists(ctx, table, keyColumn, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNoRow
		}

		v, err := client.GetValue(ctx, table, keyColumn, key, column)
		if err != nil {
			return err
		}
		if !v.Valid {
			u.Println(u.Muted(ui.NullText))
			return nil
		}
		u.Println(v.String)
		return nil
	})
}

func runRow(cmd *cobra.Command, args []string) error {
	table, keyColumn, key := args[0], args[1], sanitize.ParseScalar(args[2])

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		rs, err := client.GetRowSet(ctx, table, keyColumn, key)
		if err != nil {
			return err
		}
		if rs.Len() == 0 {
			return ErrNoRow
		}
		printResultSet(u, rs)
		return nil
	})
}

func runExists(cmd *cobra.Command, args []string) error {
	table, keyColumn, key := args[0], args[1], sanitize.ParseScalar(args[2])

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		exists, err := client.ValueExists(ctx, table, keyColumn, key)
		if err != nil {
			return err
		}
		if existsQuiet {
			if !exists {
				return exitNoRow
			}
			return nil
		}
		u.Println(strconv.FormatBool(exists))
		return nil
	})
}
