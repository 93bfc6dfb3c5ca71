package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for mysqldb
type Config struct {
	// Database connection settings
	Database DatabaseConfig `mapstructure:"database"`

	// Dump command settings
	Dump DumpConfig `mapstructure:"dump"`

	// Logging
	Verbose bool `mapstructure:"verbose"`
	NoColor bool `mapstructure:"no_color"`
}

// DatabaseConfig holds the connection parameters for a client
type DatabaseConfig struct {
	// Host name, IP address, or absolute unix socket path
	Host string `mapstructure:"host"`

	// Port (0 = DefaultPort). Ignored for unix sockets.
	Port int `mapstructure:"port"`

	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// Name of the database to create (if enabled) and select
	Name string `mapstructure:"name"`

	// Connection character set, applied with SET NAMES
	Encoding string `mapstructure:"encoding"`

	// Create the database on connect when it does not exist
	CreateDatabase bool `mapstructure:"create_database"`

	// Fail bound queries whose template and bindings do not line up
	StrictBindings bool `mapstructure:"strict_bindings"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DumpConfig holds settings for CSV dumps
type DumpConfig struct {
	BufferSize int    `mapstructure:"buffer_size"`
	NullText   string `mapstructure:"null_text"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DefaultDatabaseConfig(),
		Dump: DumpConfig{
			BufferSize: DumpBufferSize,
			NullText:   DumpNullText,
		},
	}
}

// DefaultDatabaseConfig returns connection defaults with no user or database set
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:           DefaultHost,
		Encoding:       DefaultEncoding,
		CreateDatabase: DefaultCreateDatabase,
		StrictBindings: DefaultStrictBindings,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// SetDefaults registers every key with viper so environment variables
// resolve even when no flag or config file mentions the key.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.encoding", d.Database.Encoding)
	v.SetDefault("database.create_database", d.Database.CreateDatabase)
	v.SetDefault("database.strict_bindings", d.Database.StrictBindings)
	v.SetDefault("database.connect_timeout", d.Database.ConnectTimeout)
	v.SetDefault("dump.buffer_size", d.Dump.BufferSize)
	v.SetDefault("dump.null_text", d.Dump.NullText)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("no_color", d.NoColor)
}

// Load reads configuration from viper into a Config struct
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from a specific viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	errs := c.Database.validate()

	if c.Dump.BufferSize < 0 {
		errs = append(errs, "dump.buffer_size must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Validate checks the connection settings on their own
func (d DatabaseConfig) Validate() error {
	if errs := d.validate(); len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

var encodingPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (d DatabaseConfig) validate() []string {
	var errs []string

	if d.User == "" {
		errs = append(errs, "database.user is required")
	}
	if d.Name == "" {
		errs = append(errs, "database.name is required")
	}
	if d.Port < 0 || d.Port > 65535 {
		errs = append(errs, "database.port must be between 0 and 65535")
	}
	if d.Encoding != "" && !encodingPattern.MatchString(d.Encoding) {
		errs = append(errs, fmt.Sprintf("database.encoding %q is not a character set name", d.Encoding))
	}
	if d.ConnectTimeout < 0 {
		errs = append(errs, "database.connect_timeout must be non-negative")
	}

	return errs
}

// Network returns the driver network ("tcp" or "unix") for the host
func (d DatabaseConfig) Network() string {
	if strings.HasPrefix(d.Host, "/") {
		return "unix"
	}
	return "tcp"
}

// Address returns the dial address: host:port, or the socket path
func (d DatabaseConfig) Address() string {
	host := d.Host
	if host == "" {
		host = DefaultHost
	}
	if d.Network() == "unix" {
		return host
	}
	port := d.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Charset returns the configured encoding or the default
func (d DatabaseConfig) Charset() string {
	if d.Encoding == "" {
		return DefaultEncoding
	}
	return d.Encoding
}
