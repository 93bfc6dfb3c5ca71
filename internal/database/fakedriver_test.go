package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/willfong/mysqldb/internal/config"
)

// fakeServer records every statement sent to it and answers from canned
// responses matched by statement prefix.
type fakeServer struct {
	mu         sync.Mutex
	statements []string
	responses  []fakeResponse
	dialErr    error
}

type fakeResponse struct {
	prefix   string
	columns  []string
	rows     [][]driver.Value
	affected int64
	lastID   int64
	err      error
}

func (s *fakeServer) on(prefix string, r fakeResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.prefix = prefix
	s.responses = append(s.responses, r)
}

func (s *fakeServer) handle(q string) fakeResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, q)
	// Later registrations win
	for i := len(s.responses) - 1; i >= 0; i-- {
		if strings.HasPrefix(q, s.responses[i].prefix) {
			return s.responses[i]
		}
	}
	return fakeResponse{}
}

func (s *fakeServer) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statements...)
}

func (s *fakeServer) Last() string {
	stmts := s.Statements()
	if len(stmts) == 0 {
		return ""
	}
	return stmts[len(stmts)-1]
}

// Connect implements driver.Connector
func (s *fakeServer) Connect(context.Context) (driver.Conn, error) {
	if s.dialErr != nil {
		return nil, s.dialErr
	}
	return &fakeConn{server: s}, nil
}

// Driver implements driver.Connector
func (s *fakeServer) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("fake driver: use the connector")
}

type fakeConn struct {
	server *fakeServer
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fake driver: prepared statements not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fake driver: transactions not supported")
}

func (c *fakeConn) QueryContext(_ context.Context, q string, _ []driver.NamedValue) (driver.Rows, error) {
	r := c.server.handle(q)
	if r.err != nil {
		return nil, r.err
	}
	return &fakeRows{columns: r.columns, rows: r.rows}, nil
}

func (c *fakeConn) ExecContext(_ context.Context, q string, _ []driver.NamedValue) (driver.Result, error) {
	r := c.server.handle(q)
	if r.err != nil {
		return nil, r.err
	}
	return fakeResult{affected: r.affected, lastID: r.lastID}, nil
}

type fakeResult struct {
	affected int64
	lastID   int64
}

func (r fakeResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

type fakeRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

// newFakeClient opens a Client against a fresh fakeServer. sqlMode is what
// the server reports for @@SESSION.sql_mode.
func newFakeClient(t *testing.T, cfg config.DatabaseConfig, sqlMode string, opts ...Option) (*Client, *fakeServer) {
	t.Helper()

	server := &fakeServer{}
	server.on("SELECT @@SESSION.sql_mode", fakeResponse{
		columns: []string{"@@SESSION.sql_mode"},
		rows:    [][]driver.Value{{[]byte(sqlMode)}},
	})

	client, err := newClient(context.Background(), sql.OpenDB(server), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, server
}

func testDatabaseConfig() config.DatabaseConfig {
	cfg := config.DefaultDatabaseConfig()
	cfg.User = "root"
	cfg.Name = "shop"
	return cfg
}
