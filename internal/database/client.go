// Package database provides a single-connection MySQL client whose
// operations interpolate sanitized values into SQL text.
//
// FILE: client.go
// PURPOSE: Connection lifecycle (Open/Close), session setup, and the
// execution helpers every operation goes through.
//
// KEY TYPES:
// - Client: owns one pinned connection and the sanitizer matched to it
// - Option: functional options for Open
//
// RELATED FILES:
// - errors.go: coded Error
// - queries.go: CRUD wrappers
// - scanners.go: result materialization
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/willfong/mysqldb/internal/config"
	"github.com/willfong/mysqldb/internal/sanitize"
)

// Client wraps one MySQL connection. It is not safe for concurrent use;
// callers serialize access or open one Client per goroutine.
type Client struct {
	db     *sql.DB
	conn   *sql.Conn
	config config.DatabaseConfig

	sanitizer *sanitize.Sanitizer
	escaper   sanitize.Escaper // forced by WithEscaper, nil = detect
	logger    *slog.Logger

	closed bool

	// Metrics
	totalQueries   int64
	failedQueries  int64
	totalLatencyNs int64
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for statement tracing at debug level
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEscaper skips sql_mode detection and uses esc
func WithEscaper(esc sanitize.Escaper) Option {
	return func(c *Client) {
		c.escaper = esc
	}
}

// Open connects to the server, sets the connection character set, creates
// the database if configured to, and selects it.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Client, error) {
	mcfg := mysql.NewConfig()
	mcfg.User = cfg.User
	mcfg.Passwd = cfg.Password
	mcfg.Net = cfg.Network()
	mcfg.Addr = cfg.Address()
	mcfg.Timeout = cfg.ConnectTimeout

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, newError(CodeConnect, err, "invalid connection settings")
	}

	return newClient(ctx, sql.OpenDB(connector), cfg, opts...)
}

// newClient pins a single connection from db and prepares the session.
// db is closed on failure.
func newClient(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig, opts ...Option) (*Client, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, newError(CodeConnect, err, "unable to connect to MySQL server")
	}

	c := &Client{
		db:     db,
		conn:   conn,
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.init(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) init(ctx context.Context) error {
	esc := c.escaper
	if esc == nil {
		mode, err := c.sqlMode(ctx)
		if err != nil {
			return newError(CodeConnect, err, "failed to read sql_mode")
		}
		esc = sanitize.EscaperForSQLMode(mode)
	}
	c.sanitizer = sanitize.New(esc)

	charset := c.config.Charset()
	if _, err := c.exec(ctx, "SET NAMES "+c.sanitizer.Sanitize(sanitize.String(charset))); err != nil {
		return newError(CodeConnect, err, "failed to set character set %q", charset)
	}

	if c.config.Name == "" {
		return nil
	}

	name := sanitize.QuoteIdentifier(c.config.Name)
	if c.config.CreateDatabase {
		if _, err := c.exec(ctx, "CREATE DATABASE IF NOT EXISTS "+name); err != nil {
			return newError(CodeQuery, err, "failed to create database %s", name)
		}
	}
	if _, err := c.exec(ctx, "USE "+name); err != nil {
		return newError(CodeConnect, err, "failed to select database %s", name)
	}

	c.logger.Debug("connected", "addr", c.config.Address(), "database", c.config.Name, "charset", charset)
	return nil
}

func (c *Client) sqlMode(ctx context.Context) (string, error) {
	rs, err := c.query(ctx, "SELECT @@SESSION.sql_mode")
	if err != nil {
		return "", err
	}
	if len(rs.Rows) == 0 {
		return "", nil
	}
	return rs.Rows[0][rs.Columns[0]].String, nil
}

// Close releases the connection. Calling Close twice is a no-op.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Join(c.conn.Close(), c.db.Close())
}

// Sanitizer returns the sanitizer matched to the server's escaping mode
func (c *Client) Sanitizer() *sanitize.Sanitizer {
	return c.sanitizer
}

// Build renders template with b using the client's sanitizer. In strict
// mode the template and bindings must match exactly.
func (c *Client) Build(template string, b *sanitize.Bindings) (string, error) {
	return c.build("Build", template, b)
}

func (c *Client) build(op, template string, b *sanitize.Bindings) (string, error) {
	if c.config.StrictBindings {
		if err := sanitize.Check(template, b); err != nil {
			return "", bindingError(err, op)
		}
	}
	q, err := c.sanitizer.Build(template, b)
	if err != nil {
		return "", bindingError(err, op)
	}
	return q, nil
}

// query runs a statement that returns rows and materializes them
func (c *Client) query(ctx context.Context, q string) (*ResultSet, error) {
	if c.closed {
		return nil, sql.ErrConnDone
	}
	start := time.Now()
	rows, err := c.conn.QueryContext(ctx, q)
	if err != nil {
		c.recordQuery(q, time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	rs, err := scanResultSet(rows)
	c.recordQuery(q, time.Since(start), err)
	return rs, err
}

// exec runs a statement that does not return rows
func (c *Client) exec(ctx context.Context, q string) (sql.Result, error) {
	if c.closed {
		return nil, sql.ErrConnDone
	}
	start := time.Now()
	result, err := c.conn.ExecContext(ctx, q)
	c.recordQuery(q, time.Since(start), err)
	return result, err
}

// recordQuery updates internal metrics and traces the statement
func (c *Client) recordQuery(q string, duration time.Duration, err error) {
	c.totalQueries++
	c.totalLatencyNs += duration.Nanoseconds()
	if err != nil {
		c.failedQueries++
		c.logger.Debug("query failed", "sql", q, "duration", duration, "error", err)
		return
	}
	c.logger.Debug("query", "sql", q, "duration", duration)
}

// Stats returns query statistics for this client
func (c *Client) Stats() Stats {
	return Stats{
		TotalQueries:  c.totalQueries,
		FailedQueries: c.failedQueries,
		AvgLatency:    c.averageLatency(),
	}
}

func (c *Client) averageLatency() time.Duration {
	if c.totalQueries == 0 {
		return 0
	}
	return time.Duration(c.totalLatencyNs / c.totalQueries)
}

// Stats contains query statistics
type Stats struct {
	TotalQueries  int64
	FailedQueries int64
	AvgLatency    time.Duration
}

// String formats the stats for display
func (s Stats) String() string {
	return fmt.Sprintf("%d queries, %d failed, avg %s", s.TotalQueries, s.FailedQueries, s.AvgLatency)
}
