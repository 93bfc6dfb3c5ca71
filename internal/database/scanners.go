// Package database provides a single-connection MySQL client whose
// operations interpolate sanitized values into SQL text.
//
// FILE: scanners.go
// PURPOSE: Materializes sql.Rows into text rows keyed by column name.
//
// KEY TYPES:
// - Row: one row, column name -> nullable text
// - ResultSet: ordered columns plus rows
//
// RELATED FILES:
// - client.go: query() calls scanResultSet
package database

import (
	"database/sql"
)

// Row maps column names to their text values. NULL is an invalid
// sql.NullString.
type Row map[string]sql.NullString

// Get returns the column's text and whether it was non-NULL
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v.String, ok && v.Valid
}

// ResultSet holds every row a query returned
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Strings returns the rows as positional text, with NULL rendered as
// nullText
func (rs *ResultSet) Strings(nullText string) [][]string {
	out := make([][]string, len(rs.Rows))
	for i, row := range rs.Rows {
		out[i] = make([]string, len(rs.Columns))
		for j, col := range rs.Columns {
			if v := row[col]; v.Valid {
				out[i][j] = v.String
			} else {
				out[i][j] = nullText
			}
		}
	}
	return out
}

func scanResultSet(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		// Every column scans as nullable text, whatever its SQL type
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}
