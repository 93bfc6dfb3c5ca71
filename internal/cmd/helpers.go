package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/willfong/mysqldb/internal/config"
	"github.com/willfong/mysqldb/internal/database"
	"github.com/willfong/mysqldb/internal/sanitize"
	"github.com/willfong/mysqldb/internal/ui"
)

// newUI returns a UI bound to the command's output streams.
func newUI(cmd *cobra.Command) *ui.UI {
	u := ui.New()
	if out := cmd.OutOrStdout(); out != os.Stdout {
		u.Out = out
		u.OutTTY = false
	}
	if errOut := cmd.ErrOrStderr(); errOut != os.Stderr {
		u.Err = errOut
		u.ErrTTY = false
	}
	if noColor || (appConfig != nil && appConfig.NoColor) {
		u.SetNoColor(true)
	}
	return u
}

// newLogger returns a debug-level text logger on w when verbose, and a
// discarding logger otherwise.
func newLogger(w io.Writer) *slog.Logger {
	if !Verbose() {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// currentConfig returns the loaded configuration, or defaults when the
// command ran without PersistentPreRunE (as in tests).
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// clientFunc is the body of a command that needs a connection.
type clientFunc func(ctx context.Context, u *ui.UI, client *database.Client) error

// withClient connects with the current configuration, runs fn and closes
// the connection.
func withClient(cmd *cobra.Command, fn clientFunc) error {
	u := newUI(cmd)
	cfg := currentConfig().Database
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Only animate for people, not pipelines
	var spin *ui.Spinner
	if u.ErrTTY || Verbose() {
		spin = u.NewSpinner("Connecting to " + cfg.Address())
		spin.Start()
	}

	client, err := database.Open(ctx, cfg, database.WithLogger(newLogger(u.Err)))
	if err != nil {
		if spin != nil {
			spin.Error("failed")
		}
		return err
	}
	defer client.Close()

	if spin != nil {
		if Verbose() {
			spin.Success("connected")
		} else {
			spin.Stop()
		}
	}

	err = fn(ctx, u, client)

	if Verbose() {
		u.Status(u.Muted(client.Stats().String()))
	}
	return err
}

// bindingFlags collects query bindings from --values, --file and --set.
type bindingFlags struct {
	values string
	file   string
	sets   []string
}

func (f *bindingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "bindings as a YAML or JSON mapping, e.g. '{id: 7, name: Ann}'")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read the bindings mapping from a YAML or JSON file (- for stdin)")
	cmd.Flags().StringArrayVarP(&f.sets, "set", "s", nil, "bind one key=value (repeatable, applied last)")
}

// bindings merges the three sources in order: file, --values, then --set.
func (f *bindingFlags) bindings(op string, stdin io.Reader) (*sanitize.Bindings, error) {
	b := sanitize.NewBindings()

	if f.file != "" {
		data, err := readInput(f.file, stdin)
		if err != nil {
			return nil, err
		}
		if err := mergeYAML(b, data, op); err != nil {
			return nil, err
		}
	}
	if f.values != "" {
		if err := mergeYAML(b, []byte(f.values), op); err != nil {
			return nil, err
		}
	}
	for _, kv := range f.sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected key=value", kv)
		}
		b.Set(key, sanitize.ParseScalar(value))
	}

	if err := b.Validate(); err != nil {
		return nil, database.InputError(op, err)
	}
	return b, nil
}

func mergeYAML(b *sanitize.Bindings, data []byte, op string) error {
	parsed, err := sanitize.BindingsFromYAML(data)
	if err != nil {
		return database.InputError(op, err)
	}
	for _, k := range parsed.Keys() {
		v, _ := parsed.Get(k)
		b.Set(k, v)
	}
	return nil
}

// readInput reads a whole file, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// printResultSet writes rs as a table to stdout and the row count to stderr.
func printResultSet(u *ui.UI, rs *database.ResultSet) {
	if len(rs.Columns) > 0 {
		u.Println(u.ResultTable(rs.Columns, rs.Strings(ui.NullText)))
	}
	u.Status(u.RowCount(rs.Len()))
}

// printResult reports the affected row count and any generated id.
func printResult(u *ui.UI, result sql.Result) {
	affected, err := result.RowsAffected()
	if err != nil {
		u.Status(u.Warning("affected row count unavailable: " + err.Error()))
	} else {
		u.Status(u.Success(fmt.Sprintf("%d rows affected", affected)))
	}
	if id, err := result.LastInsertId(); err == nil && id != 0 {
		u.Println(u.KeyValue("Insert ID", fmt.Sprintf("%d", id)))
	}
}
