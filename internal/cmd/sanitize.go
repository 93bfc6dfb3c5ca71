package cmd

import (
	"github.com/spf13/cobra"
	"github.com/willfong/mysqldb/internal/sanitize"
)

var (
	sanitizeBindings bindingFlags
	sanitizeSQLMode  string
	sanitizeCheck    bool
)

// sanitizeCmd renders a template without connecting
var sanitizeCmd = &cobra.Command{
	Use:   "sanitize TEMPLATE",
	Short: "Print the SQL a template renders to, without running it",
	Long: `Substitute bindings into TEMPLATE and print the resulting SQL. No
connection is made, so the escaping mode comes from --sql-mode.

--check (or --strict) reports every token without a binding and every binding
without a token, and fails instead of printing.

Examples:
  mysqldb sanitize 'SELECT * FROM t WHERE a = :a:' --set a="it's"
  mysqldb sanitize 'SELECT :a:' --set a="it's" --sql-mode NO_BACKSLASH_ESCAPES
  mysqldb sanitize 'SELECT :a:, :b:' --set a=1 --check`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)

	sanitizeBindings.register(sanitizeCmd)
	sanitizeCmd.Flags().StringVar(&sanitizeSQLMode, "sql-mode", "", "server sql_mode to escape for")
	sanitizeCmd.Flags().BoolVar(&sanitizeCheck, "check", false, "fail on unmatched tokens or unused bindings")
}

func runSanitize(cmd *cobra.Command, args []string) error {
	u := newUI(cmd)

	b, err := sanitizeBindings.bindings("Build", cmd.InOrStdin())
	if err != nil {
		return err
	}

	strict := sanitizeCheck || currentConfig().Database.StrictBindings
	q, err := renderTemplate(args[0], b, sanitizeSQLMode, strict)
	if err != nil {
		return err
	}
	u.Println(q)
	return nil
}

// renderTemplate builds template the way a client connected to a server
// with sqlMode would.
func renderTemplate(template string, b *sanitize.Bindings, sqlMode string, strict bool) (string, error) {
	if strict {
		if err := sanitize.Check(template, b); err != nil {
			return "", err
		}
	}
	return sanitize.New(sanitize.EscaperForSQLMode(sqlMode)).Build(template, b)
}
