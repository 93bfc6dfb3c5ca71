package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/willfong/mysqldb/internal/database"
	"github.com/willfong/mysqldb/internal/export"
	"github.com/willfong/mysqldb/internal/sanitize"
	"github.com/willfong/mysqldb/internal/ui"
)

var (
	scanLimit int

	dumpOutput   string
	dumpLimit    int
	dumpCompress bool
	dumpXZPreset int

	createColumns string
	createFile    string
)

var scanCmd = &cobra.Command{
	Use:   "scan TABLE",
	Short: "Print every row of a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

var dumpCmd = &cobra.Command{
	Use:   "dump TABLE",
	Short: "Write every row of a table to CSV",
	Long: `Write TABLE to a CSV file with a header row. NULL cells are written as
--null-text (default empty).

Examples:
  mysqldb dump users -o users.csv
  mysqldb dump users --null-text '\N' > users.csv
  mysqldb dump events -o events.csv --compress   # writes events.csv.xz`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

var loadCmd = &cobra.Command{
	Use:   "load TABLE FILE",
	Short: "Insert every row of a CSV file into a table",
	Long: `Insert each data row of FILE (- for stdin) into TABLE. The header row
names the columns. Cells equal to --null-text are inserted as NULL.

Loading stops at the first failed row.

Example:
  mysqldb load users users.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runLoad,
}

var createTableCmd = &cobra.Command{
	Use:   "create-table TABLE [COLUMN_DEFINITION...]",
	Short: "Create a table if it does not exist",
	Long: `Create TABLE from raw column definitions. Definitions come from the
arguments, or from a YAML or JSON sequence via --columns or --file. A mapping
is rejected with a not_sequence error.

Examples:
  mysqldb create-table users 'id INT NOT NULL PRIMARY KEY' 'name VARCHAR(64)'
  mysqldb create-table users --columns '[id INT NOT NULL, name TEXT]'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreateTable,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(createTableCmd)

	scanCmd.Flags().IntVarP(&scanLimit, "limit", "n", 0, "maximum rows to print (0 = all)")

	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "-", "output file (- for stdout)")
	dumpCmd.Flags().IntVarP(&dumpLimit, "limit", "n", 0, "maximum rows to write (0 = all)")
	dumpCmd.Flags().String("null-text", "", "text written for NULL cells")
	dumpCmd.Flags().BoolVar(&dumpCompress, "compress", false, "compress output with xz")
	dumpCmd.Flags().IntVar(&dumpXZPreset, "xz-preset", export.DefaultXZPreset, "xz compression level 0-9")
	loadCmd.Flags().String("null-text", "", "cell text read as NULL")

	createTableCmd.Flags().StringVar(&createColumns, "columns", "", "column definitions as a YAML or JSON sequence")
	createTableCmd.Flags().StringVarP(&createFile, "file", "f", "", "read the column sequence from a file (- for stdin)")
}

func runScan(cmd *cobra.Command, args []string) error {
	table := args[0]

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		rs, err := client.GetAllRows(ctx, table, scanLimit)
		if err != nil {
			return err
		}
		printResultSet(u, rs)
		return nil
	})
}

// nullText resolves --null-text, falling back to dump.null_text.
func nullText(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("null-text"); f != nil && f.Changed {
		return f.Value.String()
	}
	return viper.GetString("dump.null_text")
}

func runDump(cmd *cobra.Command, args []string) error {
	table := args[0]
	null := nullText(cmd)

	if dumpCompress {
		if err := export.CheckXZAvailable(); err != nil {
			return err
		}
	}

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		rs, err := client.GetAllRows(ctx, table, dumpLimit)
		if err != nil {
			return err
		}

		w, err := export.NewCSVWriter(export.CSVWriterConfig{
			Path:       dumpOutput,
			Stdout:     u.Out,
			Headers:    rs.Columns,
			BufferSize: currentConfig().Dump.BufferSize,
			Compress:   dumpCompress,
			XZPreset:   dumpXZPreset,
		})
		if err != nil {
			return err
		}

		bar := u.NewProgressBar("Dumping "+table, int64(rs.Len()))
		for i, row := range rs.Strings(null) {
			if err := w.WriteRow(row); err != nil {
				w.Close()
				bar.Fail(err)
				return err
			}
			bar.Update(int64(i + 1))
		}
		if err := w.Close(); err != nil {
			bar.Fail(err)
			return err
		}
		bar.Complete()

		if w.Path() != "-" {
			u.Status(u.Success(fmt.Sprintf("wrote %d rows to %s", w.RowCount(), w.Path())))
		}
		return nil
	})
}

func runLoad(cmd *cobra.Command, args []string) error {
	table, path := args[0], args[1]
	null := nullText(cmd)

	r, err := export.OpenCSV(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer r.Close()

	headers := r.Headers()

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		bar := u.NewProgressBar("Loading "+table, 0)
		var loaded int64

		for {
			record, err := r.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				bar.Fail(err)
				return err
			}

			if _, err := client.AddRow(ctx, table, recordBindings(headers, record, null)); err != nil {
				err = fmt.Errorf("line %d: %w", r.Line(), err)
				bar.Fail(err)
				return err
			}
			loaded++
			bar.Update(loaded)
		}

		bar.Complete()
		return nil
	})
}

// recordBindings pairs a CSV record with its headers. Cells equal to null
// become NULL and every other cell stays a string.
func recordBindings(headers, record []string, null string) *sanitize.Bindings {
	row := sanitize.NewBindings()
	for i, col := range headers {
		if i < len(record) && record[i] != null {
			row.Set(col, record[i])
		} else {
			row.Set(col, sanitize.Null())
		}
	}
	return row
}

func runCreateTable(cmd *cobra.Command, args []string) error {
	table := args[0]

	columns, err := createTableColumns(args[1:], cmd.InOrStdin())
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, u *ui.UI, client *database.Client) error {
		if err := client.CreateTableFrom(ctx, table, columns); err != nil {
			return err
		}
		u.Status(u.Success(fmt.Sprintf("table %s ready", sanitize.QuoteIdentifier(table))))
		return nil
	})
}

// createTableColumns gathers column definitions from arguments, --columns
// and --file, in that order.
func createTableColumns(defs []string, stdin io.Reader) ([]sanitize.Value, error) {
	columns := make([]sanitize.Value, 0, len(defs))
	for _, def := range defs {
		columns = append(columns, sanitize.String(def))
	}

	sources := make([][]byte, 0, 2)
	if createColumns != "" {
		sources = append(sources, []byte(createColumns))
	}
	if createFile != "" {
		data, err := readInput(createFile, stdin)
		if err != nil {
			return nil, err
		}
		sources = append(sources, data)
	}

	for _, data := range sources {
		more, err := sanitize.ColumnsFromYAML(data)
		if err != nil {
			return nil, database.InputError("CreateTable", err)
		}
		columns = append(columns, more...)
	}
	return columns, nil
}
