package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/mysqldb/internal/config"
	"github.com/willfong/mysqldb/internal/database"
	"github.com/willfong/mysqldb/internal/sanitize"
	"github.com/willfong/mysqldb/internal/ui"
)

func TestBindingFlags(t *testing.T) {
	t.Run("sources merge in order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "row.yaml")
		require.NoError(t, os.WriteFile(path, []byte("id: 1\nname: file\nnote: kept\n"), 0o644))

		f := bindingFlags{
			file:   path,
			values: `{name: values, active: true}`,
			sets:   []string{"name=set", "missing=~"},
		}
		b, err := f.bindings("AddRow", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"id", "name", "note", "active", "missing"}, b.Keys())
		name, _ := b.Get("name")
		assert.Equal(t, sanitize.String("set"), name)
		id, _ := b.Get("id")
		assert.Equal(t, sanitize.Int(1), id)
		missing, _ := b.Get("missing")
		assert.True(t, missing.IsNull())
	})

	t.Run("stdin", func(t *testing.T) {
		f := bindingFlags{file: "-"}
		b, err := f.bindings("AddRow", strings.NewReader(`{"k": "v"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"k"}, b.Keys())
	})

	t.Run("no sources", func(t *testing.T) {
		var f bindingFlags
		b, err := f.bindings("Query", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("sequence is not a mapping", func(t *testing.T) {
		f := bindingFlags{values: "[1, 2]"}
		_, err := f.bindings("AddRow", nil)
		assert.Equal(t, database.CodeNotMapping, database.CodeOf(err))
	})

	t.Run("set without equals", func(t *testing.T) {
		f := bindingFlags{sets: []string{"novalue"}}
		_, err := f.bindings("Query", nil)
		assert.ErrorContains(t, err, "expected key=value")
	})

	t.Run("key with colon", func(t *testing.T) {
		f := bindingFlags{sets: []string{"a:b=1"}}
		_, err := f.bindings("Query", nil)
		assert.ErrorIs(t, err, sanitize.ErrInvalidBindingShape)
		assert.Equal(t, database.CodeNotMapping, database.CodeOf(err))
	})
}

func TestRenderTemplate(t *testing.T) {
	b := sanitize.Bind("a", "it's").Set("n", 3)

	q, err := renderTemplate("SELECT :a:, :n:", b, "", false)
	require.NoError(t, err)
	assert.Equal(t, `SELECT 'it\'s', 3`, q)

	q, err = renderTemplate("SELECT :a:", b, "ANSI_QUOTES,NO_BACKSLASH_ESCAPES", false)
	require.NoError(t, err)
	assert.Equal(t, `SELECT 'it''s'`, q)

	q, err = renderTemplate("SELECT :a:, :zz:", b, "", false)
	require.NoError(t, err)
	assert.Equal(t, `SELECT 'it\'s', :zz:`, q)

	_, err = renderTemplate("SELECT :a:, :zz:", b, "", true)
	assert.ErrorIs(t, err, sanitize.ErrUnmatchedToken)
	assert.ErrorIs(t, err, sanitize.ErrUnusedBinding)
}

func TestSanitizeCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"sanitize", "--no-color", "INSERT INTO t VALUES (:v:)", "--values", `{v: "a\nb"}`})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Equal(t, "INSERT INTO t VALUES ('a\\nb')\n", out.String())
}

func TestCreateTableColumns(t *testing.T) {
	t.Cleanup(func() { createColumns, createFile = "", "" })

	createColumns = "[name TEXT, age INT]"
	cols, err := createTableColumns([]string{"id INT"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []sanitize.Value{
		sanitize.String("id INT"),
		sanitize.String("name TEXT"),
		sanitize.String("age INT"),
	}, cols)

	createColumns = "{id: INT}"
	_, err = createTableColumns(nil, nil)
	assert.Equal(t, database.CodeNotSequence, database.CodeOf(err))
}

func TestWithClientValidatesFirst(t *testing.T) {
	appConfig = config.DefaultConfig()
	t.Cleanup(func() { appConfig = nil })

	called := false
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := withClient(cmd, func(context.Context, *ui.UI, *database.Client) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user is required")
	assert.False(t, called)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"silent status", exitStatus(1), 1},
		{"no row", exitNoRow, 10},
		{"coded", &database.Error{Code: database.CodeCreateTable, Message: "x"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}

	for _, code := range []database.Code{
		database.CodeConnect, database.CodeNotMapping, database.CodeNotSequence,
		database.CodeCreateTable, database.CodeBinding, database.CodeQuery,
	} {
		assert.NotEqual(t, ExitCode(exitNoRow), ExitCode(&database.Error{Code: code}), code.String())
	}

	assert.Equal(t, "x [create_table error 4]", describeError(&database.Error{Code: database.CodeCreateTable, Message: "x"}))

	missing := &database.Error{
		Code:    database.CodeQuery,
		Message: "GetRow failed",
		Err:     &mysql.MySQLError{Number: 1146, Message: "Table 'shop.t' doesn't exist"},
	}
	assert.Equal(t,
		"GetRow failed: Error 1146: Table 'shop.t' doesn't exist [query error 7]\n  hint: the table does not exist; see create-table",
		describeError(missing))
}

func TestPrintResultSet(t *testing.T) {
	var out, errOut bytes.Buffer
	u := ui.NewPlain(&out, &errOut)

	printResultSet(u, &database.ResultSet{
		Columns: []string{"id", "name"},
		Rows: []database.Row{
			{"id": {String: "1", Valid: true}, "name": {}},
		},
	})

	assert.Equal(t, "id  name\n1   NULL\n", out.String())
	assert.Equal(t, "(1 row)\n", errOut.String())

	t.Run("keeps column order", func(t *testing.T) {
		var out, errOut bytes.Buffer
		u := ui.NewPlain(&out, &errOut)

		printResultSet(u, &database.ResultSet{
			Columns: []string{"zip", "id", "active"},
			Rows: []database.Row{
				{"zip": {String: "01234", Valid: true}, "id": {String: "3", Valid: true}, "active": {String: "1", Valid: true}},
			},
		})

		assert.Equal(t, "zip    id  active\n01234  3   1\n", out.String())
	})
}

func TestRecordBindings(t *testing.T) {
	headers := []string{"id", "name", "email"}

	tests := []struct {
		name   string
		record []string
		null   string
		want   string
	}{
		{"empty cell is null", []string{"8", "", "a@b.c"}, "", "'8'|NULL|'a@b.c'"},
		{"null text", []string{"8", `\N`, ""}, `\N`, "'8'|NULL|''"},
		{"short record", []string{"8"}, "", "'8'|NULL|NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := recordBindings(headers, tt.record, tt.null)
			require.Equal(t, headers, row.Keys())

			got := make([]string, 0, row.Len())
			for _, k := range row.Keys() {
				v, _ := row.Get(k)
				if v.IsNull() {
					got = append(got, "NULL")
					continue
				}
				got = append(got, sanitize.New(nil).Sanitize(v))
			}
			assert.Equal(t, tt.want, strings.Join(got, "|"))
		})
	}
}
