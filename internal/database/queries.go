// Package database provides a single-connection MySQL client whose
// operations interpolate sanitized values into SQL text.
//
// FILE: queries.go
// PURPOSE: Row lookup, insert, update, delete, table scan, table creation
// and raw query helpers. Each builds a template, substitutes sanitized
// values and runs it on the pinned connection.
//
// KEY FUNCTIONS:
// - GetValue / GetRow / ValueExists: lookups by key column
// - ChangeValue / SetValue: update by key column
// - DeleteRow: delete by key column with optional limit
// - AddRow: insert from ordered bindings
// - GetAllRows: full table scan with optional limit
// - CreateTable / CreateTableFrom: CREATE TABLE IF NOT EXISTS
// - Query / Exec: raw templates with bindings
// - KnownQuery / KnownExec: raw SQL run verbatim
//
// RELATED FILES:
// - client.go: build/query/exec helpers
// - scanners.go: Row and ResultSet
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/willfong/mysqldb/internal/sanitize"
)

// keyToken is the binding name used by the key-column lookups
const keyToken = "key"

// nullKeyword stands in for a value token when the bound value is null
const nullKeyword = "NULL"

func keyLookup(key any) *sanitize.Bindings {
	return sanitize.Bind(keyToken, key)
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

// GetValue returns neededColumn from the first row whose keyColumn equals
// key. The result is invalid when no row matched or the value is NULL.
func (c *Client) GetValue(ctx context.Context, table, keyColumn string, key any, neededColumn string) (sql.NullString, error) {
	template := fmt.Sprintf("SELECT %s FROM %s WHERE %s = :key: LIMIT 1",
		sanitize.QuoteIdentifier(neededColumn), sanitize.QuoteIdentifier(table), sanitize.QuoteIdentifier(keyColumn))

	rs, err := c.runQuery(ctx, "GetValue", template, keyLookup(key))
	if err != nil {
		return sql.NullString{}, err
	}
	if rs.Len() == 0 {
		return sql.NullString{}, nil
	}
	return rs.Rows[0][rs.Columns[0]], nil
}

// GetRow returns the first row whose keyColumn equals key, or nil
func (c *Client) GetRow(ctx context.Context, table, keyColumn string, key any) (Row, error) {
	rs, err := c.GetRowSet(ctx, table, keyColumn, key)
	if err != nil {
		return nil, err
	}
	if rs.Len() == 0 {
		return nil, nil
	}
	return rs.Rows[0], nil
}

// GetRowSet is GetRow keeping the table's column order. The set holds at
// most one row.
func (c *Client) GetRowSet(ctx context.Context, table, keyColumn string, key any) (*ResultSet, error) {
	template := fmt.Sprintf("SELECT * FROM %s WHERE %s = :key: LIMIT 1",
		sanitize.QuoteIdentifier(table), sanitize.QuoteIdentifier(keyColumn))

	return c.runQuery(ctx, "GetRow", template, keyLookup(key))
}

// ValueExists reports whether any row's keyColumn equals key
func (c *Client) ValueExists(ctx context.Context, table, keyColumn string, key any) (bool, error) {
	template := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = :key: LIMIT 1",
		sanitize.QuoteIdentifier(table), sanitize.QuoteIdentifier(keyColumn))

	q, err := c.build("ValueExists", template, keyLookup(key))
	if err != nil {
		return false, err
	}
	rs, err := c.query(ctx, q)
	if err != nil {
		return false, newError(CodeQuery, err, "failed to search for '%s' in table %s", keyColumn, table)
	}
	return rs.Len() > 0, nil
}

// ChangeValue replaces keyColumn's value with newValue on the rows where it
// currently equals key. It returns the number of rows changed.
func (c *Client) ChangeValue(ctx context.Context, table, keyColumn string, key, newValue any) (int64, error) {
	return c.SetValue(ctx, table, keyColumn, key, keyColumn, newValue)
}

// SetValue sets targetColumn to newValue on rows whose keyColumn equals key.
// A nil newValue sets the column to NULL. It returns the number of rows
// changed.
func (c *Client) SetValue(ctx context.Context, table, keyColumn string, key any, targetColumn string, newValue any) (int64, error) {
	bindings := keyLookup(key)
	value := ":value:"
	if v := sanitize.Of(newValue); v.IsNull() {
		value = nullKeyword
	} else {
		bindings.Set("value", v)
	}
	template := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = :key:",
		sanitize.QuoteIdentifier(table), sanitize.QuoteIdentifier(targetColumn), value, sanitize.QuoteIdentifier(keyColumn))

	result, err := c.runExec(ctx, "SetValue", template, bindings)
	if err != nil {
		return 0, err
	}
	return rowsAffected(result)
}

// DeleteRow deletes rows whose keyColumn equals key. A positive limit caps
// the number deleted. It returns the number of rows deleted.
func (c *Client) DeleteRow(ctx context.Context, table, keyColumn string, key any, limit int) (int64, error) {
	template := fmt.Sprintf("DELETE FROM %s WHERE %s = :key:%s",
		sanitize.QuoteIdentifier(table), sanitize.QuoteIdentifier(keyColumn), limitClause(limit))

	result, err := c.runExec(ctx, "DeleteRow", template, keyLookup(key))
	if err != nil {
		return 0, err
	}
	return rowsAffected(result)
}

// AddRow inserts one row. Binding keys are the column names, in order.
// Null values are written as the NULL keyword.
func (c *Client) AddRow(ctx context.Context, table string, row *sanitize.Bindings) (sql.Result, error) {
	if err := row.Validate(); err != nil {
		return nil, bindingError(err, "AddRow")
	}
	if row.Len() == 0 {
		return nil, newError(CodeNotMapping, nil, "empty row passed to AddRow: AddRow needs at least one column")
	}

	keys := row.Keys()
	tokens := make([]string, len(keys))
	values := sanitize.NewBindings()
	for i, k := range keys {
		v, _ := row.Get(k)
		if v.IsNull() {
			tokens[i] = nullKeyword
			continue
		}
		tokens[i] = ":" + k + ":"
		values.Set(k, v)
	}
	template := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sanitize.QuoteIdentifier(table), sanitize.QuoteIdentifiers(keys...), strings.Join(tokens, ", "))

	q, err := c.build("AddRow", template, values)
	if err != nil {
		return nil, err
	}
	result, err := c.exec(ctx, q)
	if err != nil {
		return nil, newError(CodeQuery, err, "unable to add row to table '%s'", table)
	}
	return result, nil
}

// GetAllRows returns every row of table, or the first limit rows when
// limit is positive.
func (c *Client) GetAllRows(ctx context.Context, table string, limit int) (*ResultSet, error) {
	rs, err := c.query(ctx, "SELECT * FROM "+sanitize.QuoteIdentifier(table)+limitClause(limit))
	if err != nil {
		return nil, newError(CodeQuery, err, "failed to read rows from table '%s'", table)
	}
	return rs, nil
}

// CreateTable creates table if it does not exist. Each column is a raw
// definition such as "id INT NOT NULL". Definitions are escaped but not
// quoted, so string literals inside them are not supported.
func (c *Client) CreateTable(ctx context.Context, table string, columns []string) error {
	values := make([]sanitize.Value, len(columns))
	for i, col := range columns {
		values[i] = sanitize.String(col)
	}
	return c.createTable(ctx, table, values)
}

// CreateTableFrom is CreateTable for untyped input. A mapping fails with
// CodeNotSequence.
func (c *Client) CreateTableFrom(ctx context.Context, table string, columns any) error {
	values, err := sanitize.ColumnsFrom(columns)
	if err != nil {
		return bindingError(err, "CreateTable")
	}
	return c.createTable(ctx, table, values)
}

func (c *Client) createTable(ctx context.Context, table string, columns []sanitize.Value) error {
	if len(columns) == 0 {
		return newError(CodeNotSequence, sanitize.ErrNotSequence, "no columns passed for CreateTable")
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = c.sanitizer.SanitizeUnquoted(col)
	}
	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", sanitize.QuoteIdentifier(table), strings.Join(defs, ", "))

	if _, err := c.exec(ctx, q); err != nil {
		return newError(CodeCreateTable, err, "unable to create table '%s'", table)
	}
	return nil
}

// Query runs a row-returning template after substituting b
func (c *Client) Query(ctx context.Context, template string, b *sanitize.Bindings) (*ResultSet, error) {
	return c.runQuery(ctx, "Query", template, b)
}

// Exec runs a template that does not return rows after substituting b
func (c *Client) Exec(ctx context.Context, template string, b *sanitize.Bindings) (sql.Result, error) {
	return c.runExec(ctx, "Exec", template, b)
}

// KnownQuery runs query verbatim and returns its rows
func (c *Client) KnownQuery(ctx context.Context, query string) (*ResultSet, error) {
	rs, err := c.query(ctx, query)
	if err != nil {
		return nil, newError(CodeQuery, err, "query failed")
	}
	return rs, nil
}

// KnownExec runs query verbatim
func (c *Client) KnownExec(ctx context.Context, query string) (sql.Result, error) {
	result, err := c.exec(ctx, query)
	if err != nil {
		return nil, newError(CodeQuery, err, "statement failed")
	}
	return result, nil
}

func (c *Client) runQuery(ctx context.Context, op, template string, b *sanitize.Bindings) (*ResultSet, error) {
	q, err := c.build(op, template, b)
	if err != nil {
		return nil, err
	}
	rs, err := c.query(ctx, q)
	if err != nil {
		return nil, newError(CodeQuery, err, "%s failed", op)
	}
	return rs, nil
}

func (c *Client) runExec(ctx context.Context, op, template string, b *sanitize.Bindings) (sql.Result, error) {
	q, err := c.build(op, template, b)
	if err != nil {
		return nil, err
	}
	result, err := c.exec(ctx, q)
	if err != nil {
		return nil, newError(CodeQuery, err, "%s failed", op)
	}
	return result, nil
}

func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, newError(CodeQuery, err, "failed to read affected rows")
	}
	return n, nil
}

