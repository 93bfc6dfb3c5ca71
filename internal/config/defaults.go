// Package config contains compile-time defaults for mysqldb.
// Every value here can be overridden by flag, environment or config file.
package config

import "time"

// =============================================================================
// CONNECTION DEFAULTS
// =============================================================================

const (
	// DefaultHost is used when no host is given
	DefaultHost = "localhost"

	// DefaultPort is the MySQL/MariaDB port used when Port is 0
	DefaultPort = 3306

	// DefaultEncoding is the connection character set (SET NAMES)
	DefaultEncoding = "latin1"

	// DefaultConnectTimeout bounds the TCP dial and handshake
	DefaultConnectTimeout = 10 * time.Second

	// DefaultCreateDatabase creates the target database on connect if absent
	DefaultCreateDatabase = true

	// DefaultStrictBindings rejects unmatched tokens and unused bindings
	DefaultStrictBindings = false
)

// =============================================================================
// CLI DEFAULTS
// =============================================================================

const (
	// EnvPrefix is prepended to environment variable names
	// (database.host -> MYSQLDB_DATABASE_HOST)
	EnvPrefix = "MYSQLDB"

	// DumpBufferSize is the write buffer used by the dump command
	DumpBufferSize = 64 * 1024

	// DumpNullText is written for NULL cells in CSV dumps
	DumpNullText = ""
)
