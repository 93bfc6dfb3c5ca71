package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/willfong/mysqldb/internal/config"
	"github.com/willfong/mysqldb/internal/database"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	// appConfig is loaded once flags are parsed
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mysqldb",
	Short: "Run sanitized queries against a MySQL database",
	Long: `A small MySQL client built around placeholder substitution.

Templates name their values with :key: tokens. Every value is escaped for
the server's sql_mode and quoted before it is substituted into the SQL.

Connection settings come from flags, MYSQLDB_* environment variables
(MYSQLDB_DATABASE_HOST, MYSQLDB_DATABASE_PASSWORD, ...) or a config file.

Example usage:
  mysqldb -u app -d shop get users id 42 email
  mysqldb -u app -d shop query 'SELECT * FROM users WHERE name = :name:' --set name="O'Brien"
  mysqldb -u app -d shop insert users --values '{id: 7, name: Ann}'
  mysqldb sanitize 'SELECT :a:, :b:' --set a=1 --set b=it\'s`,
	PersistentPreRunE: loadConfig,
}

// Execute runs the CLI and prints any failure to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var status exitStatus
	if err != nil && !errors.As(err, &status) {
		u := newUI(rootCmd)
		u.Status(u.Error(describeError(err)))
	}
	return err
}

// ExitCode maps an error from Execute to a process exit status: the client
// error code when there is one, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var status exitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	if code := database.CodeOf(err); code != database.CodeNone {
		return int(code)
	}
	return 1
}

// exitStatus ends the process with a status and no message.
type exitStatus int

// exitNoRow is the quiet exists status for a missing row. It sits above
// the client error codes so scripts can tell it from a failure.
const exitNoRow exitStatus = 10

func (s exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(s))
}

// serverHints suggests a fix for common MySQL server errors.
var serverHints = map[uint16]string{
	1045: "check --user and --password",
	1049: "the database does not exist; run without --create-db=false to create it",
	1146: "the table does not exist; see create-table",
}

func describeError(err error) string {
	msg := err.Error()
	if code := database.CodeOf(err); code != database.CodeNone {
		msg = fmt.Sprintf("%s [%s error %d]", msg, code, int(code))
	}
	if myErr, ok := database.ServerError(err); ok {
		if hint, ok := serverHints[myErr.Number]; ok {
			msg += "\n  hint: " + hint
		}
	}
	return msg
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./mysqldb.yaml or ~/.config/mysqldb/mysqldb.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every SQL statement to stderr")
	flags.BoolVar(&noColor, "no-color", false, "disable colors and animations")

	flags.String("host", config.DefaultHost, "server host name, IP, or unix socket path")
	flags.IntP("port", "P", config.DefaultPort, "server port")
	flags.StringP("user", "u", "", "user name")
	flags.StringP("password", "p", "", "password")
	flags.StringP("database", "d", "", "database to create (unless --create-db=false) and use")
	flags.String("encoding", config.DefaultEncoding, "connection character set")
	flags.Bool("create-db", config.DefaultCreateDatabase, "create the database if it does not exist")
	flags.Bool("strict", config.DefaultStrictBindings, "fail when template tokens and bindings do not match")
	flags.Duration("connect-timeout", config.DefaultConnectTimeout, "dial and handshake timeout")

	bindFlag("database.host", "host")
	bindFlag("database.port", "port")
	bindFlag("database.user", "user")
	bindFlag("database.password", "password")
	bindFlag("database.name", "database")
	bindFlag("database.encoding", "encoding")
	bindFlag("database.create_database", "create-db")
	bindFlag("database.strict_bindings", "strict")
	bindFlag("database.connect_timeout", "connect-timeout")
	bindFlag("verbose", "verbose")
	bindFlag("no_color", "no-color")

	// Silence usage on error - we'll print our own messages
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	// Set version template
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// loadConfig merges defaults, config file, environment and flags into
// appConfig.
func loadConfig(cmd *cobra.Command, args []string) error {
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mysqldb")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/mysqldb")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appConfig = cfg
	return nil
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose || (appConfig != nil && appConfig.Verbose)
}
