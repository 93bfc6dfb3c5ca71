// Package database provides a single-connection MySQL client whose
// operations interpolate sanitized values into SQL text.
//
// FILE: errors.go
// PURPOSE: The coded error returned by every client operation.
//
// KEY TYPES:
// - Error: message plus numeric Code, wrapping the driver or sanitize cause
// - Code: the error categories
//
// RELATED FILES:
// - client.go: Open/Close and statement execution
// - queries.go: CRUD wrappers
package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/willfong/mysqldb/internal/sanitize"
)

// Code categorizes client errors
type Code int

const (
	CodeNone        Code = 0
	CodeConnect     Code = 1 // could not connect, set charset or select the database
	CodeNotMapping  Code = 2 // keyed mapping required, sequence given
	CodeNotSequence Code = 3 // sequence required, mapping given
	CodeCreateTable Code = 4 // CREATE TABLE failed
	CodeBinding     Code = 6 // strict mode: template and bindings disagree
	CodeQuery       Code = 7 // driver reported an error
)

// String returns a short name for the code
func (c Code) String() string {
	switch c {
	case CodeConnect:
		return "connect"
	case CodeNotMapping:
		return "not_mapping"
	case CodeNotSequence:
		return "not_sequence"
	case CodeCreateTable:
		return "create_table"
	case CodeBinding:
		return "binding"
	case CodeQuery:
		return "query"
	default:
		return "none"
	}
}

// Error is returned by every Client operation
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the Code carried by err, or CodeNone
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeNone
}

// bindingError maps sanitize failures onto codes
func bindingError(err error, op string) *Error {
	switch {
	case errors.Is(err, sanitize.ErrInvalidBindingShape):
		return newError(CodeNotMapping, err, "non-mapping bindings passed to %s: %s only takes keyed mappings", op, op)
	case errors.Is(err, sanitize.ErrNotSequence):
		return newError(CodeNotSequence, err, "mapping passed to %s: %s only takes sequences", op, op)
	default:
		return newError(CodeBinding, err, "template and bindings do not match in %s", op)
	}
}

// InputError codes a failure from converting caller input for op, such as
// sanitize.BindingsFromYAML or sanitize.ColumnsFromYAML, the same way the
// client codes its own conversions. Other errors, such as YAML syntax
// errors, are returned unchanged.
func InputError(op string, err error) error {
	if errors.Is(err, sanitize.ErrInvalidBindingShape) || errors.Is(err, sanitize.ErrNotSequence) {
		return bindingError(err, op)
	}
	return err
}

// ServerError returns the MySQL server error wrapped in err, if any
func ServerError(err error) (*mysql.MySQLError, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr, true
	}
	return nil, false
}
