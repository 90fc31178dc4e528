package config

import (
	"os"
	"path/filepath"
	"time"

	"timesheet/internal/repository/sqlstore"
	"timesheet/internal/validation"
)

// Config holds all configuration options for the timesheet service
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Server      ServerConfig      `yaml:"server"`
	Timesheet   TimesheetConfig   `yaml:"timesheet"`
	Notify      NotifyConfig      `yaml:"notify"`
	Export      ExportConfig      `yaml:"export"`
	Validation  ValidationConfig  `yaml:"validation"`
	Application ApplicationConfig `yaml:"application"`
	CLI         CLIConfig         `yaml:"cli"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `env:"TS_DB_DRIVER" yaml:"driver"`
	DSN            string        `env:"TS_DB_DSN" yaml:"dsn"`
	Dir            string        `env:"TS_DB_DIR" yaml:"dir"`
	Filename       string        `env:"TS_DB_FILENAME" yaml:"filename"`
	QueryTimeout   time.Duration `env:"TS_DB_QUERY_TIMEOUT" yaml:"query_timeout"`
	WriteTimeout   time.Duration `env:"TS_DB_WRITE_TIMEOUT" yaml:"write_timeout"`
	MaxOpenConns   int           `env:"TS_DB_MAX_OPEN_CONNS" yaml:"max_open_conns"`
	DirPermissions uint32        `env:"TS_DB_DIR_PERMISSIONS" yaml:"dir_permissions"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `env:"TS_SERVER_ADDR" yaml:"addr"`
	ReadTimeout     time.Duration `env:"TS_SERVER_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"TS_SERVER_WRITE_TIMEOUT" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"TS_SERVER_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// TimesheetConfig holds approval workflow configuration
type TimesheetConfig struct {
	DefaultTimezone string `env:"TS_TIMEZONE" yaml:"default_timezone"`
	AdminSeesAdmins bool   `env:"TS_APPROVAL_ADMIN_SEES_ADMINS" yaml:"admin_sees_admins"`
	AppURL          string `env:"TS_APP_URL" yaml:"app_url"`
}

// NotifyConfig selects notification delivery
type NotifyConfig struct {
	Log       bool   `env:"TS_NOTIFY_LOG" yaml:"log"`
	OutboxDir string `env:"TS_NOTIFY_OUTBOX_DIR" yaml:"outbox_dir"`
	Language  string `env:"TS_NOTIFY_LANGUAGE" yaml:"language"`
}

// ExportConfig holds CSV export formatting
type ExportConfig struct {
	DateFormat string `env:"TS_EXPORT_DATE_FORMAT" yaml:"date_format"`
	TimeFormat string `env:"TS_EXPORT_TIME_FORMAT" yaml:"time_format"`
}

// ValidationConfig holds request limits
type ValidationConfig struct {
	MaxBatchSize         int           `env:"TS_VALIDATION_MAX_BATCH" yaml:"max_batch"`
	MaxEntryDuration     time.Duration `env:"TS_VALIDATION_MAX_DURATION" yaml:"max_duration"`
	DescriptionMaxLength int           `env:"TS_VALIDATION_DESCRIPTION_MAX" yaml:"description_max"`
	MaxTags              int           `env:"TS_VALIDATION_MAX_TAGS" yaml:"max_tags"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout   time.Duration `env:"TS_APP_TIMEOUT" yaml:"timeout"`
	Verbose   bool          `env:"TS_APP_VERBOSE" yaml:"verbose"`
	LogFormat string        `env:"TS_LOG_FORMAT" yaml:"log_format"`
}

// CLIConfig identifies who command line calls act as
type CLIConfig struct {
	OrgID  string `env:"TS_ORG_ID" yaml:"org_id"`
	UserID string `env:"TS_USER_ID" yaml:"user_id"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	limits := validation.DefaultLimits()

	return &Config{
		Database: DatabaseConfig{
			Driver:         sqlstore.DriverSQLite,
			Dir:            filepath.Join(homeDir, ".timesheet"),
			Filename:       "timesheet.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			MaxOpenConns:   10,
			DirPermissions: 0755,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Timesheet: TimesheetConfig{
			DefaultTimezone: "UTC",
			AppURL:          "http://localhost:8080",
		},
		Notify: NotifyConfig{
			Log:      true,
			Language: "en",
		},
		Export: ExportConfig{
			DateFormat: "2006-01-02",
			TimeFormat: "15:04:05",
		},
		Validation: ValidationConfig{
			MaxBatchSize:         limits.MaxBatchSize,
			MaxEntryDuration:     limits.MaxEntryDuration,
			DescriptionMaxLength: limits.DescriptionMaxLength,
			MaxTags:              limits.MaxTags,
		},
		Application: ApplicationConfig{
			Timeout:   60 * time.Second,
			LogFormat: "text",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// DataSource returns the DSN for the configured driver. SQLite falls back to
// the database path when no DSN is set.
func (c *Config) DataSource() string {
	if c.Database.DSN != "" || c.Database.Driver == sqlstore.DriverMySQL {
		return c.Database.DSN
	}
	return c.GetDatabasePath()
}

// StoreOptions returns the options for opening the store
func (c *Config) StoreOptions() sqlstore.Options {
	return sqlstore.Options{
		Driver:       c.Database.Driver,
		DSN:          c.DataSource(),
		MaxOpenConns: c.Database.MaxOpenConns,
		QueryTimeout: c.Database.QueryTimeout,
		WriteTimeout: c.Database.WriteTimeout,
	}
}

// Limits returns the request limits
func (c *Config) Limits() validation.Limits {
	return validation.Limits{
		MaxBatchSize:         c.Validation.MaxBatchSize,
		MaxEntryDuration:     c.Validation.MaxEntryDuration,
		DescriptionMaxLength: c.Validation.DescriptionMaxLength,
		MaxTags:              c.Validation.MaxTags,
	}
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case sqlstore.DriverSQLite:
		if c.Database.DSN == "" && (c.Database.Dir == "" || c.Database.Filename == "") {
			return &ConfigError{Field: "database.dir", Message: "database directory and filename cannot be empty"}
		}
	case sqlstore.DriverMySQL:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "mysql requires a dsn"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or mysql"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}

	if _, err := time.LoadLocation(c.Timesheet.DefaultTimezone); err != nil {
		return &ConfigError{Field: "timesheet.default_timezone", Message: "unknown timezone " + c.Timesheet.DefaultTimezone}
	}

	if c.Validation.MaxBatchSize < 1 {
		return &ConfigError{Field: "validation.max_batch", Message: "max batch size must be at least 1"}
	}
	if c.Validation.MaxEntryDuration <= 0 {
		return &ConfigError{Field: "validation.max_duration", Message: "max duration must be positive"}
	}

	switch c.Application.LogFormat {
	case "text", "json":
	default:
		return &ConfigError{Field: "application.log_format", Message: "log format must be text or json"}
	}
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
