package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"timesheet/internal/repository/sqlstore"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, sqlstore.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "timesheet.db", cfg.Database.Filename)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "UTC", cfg.Timesheet.DefaultTimezone)
	assert.False(t, cfg.Timesheet.AdminSeesAdmins)
	assert.True(t, cfg.Notify.Log)
	assert.Equal(t, 500, cfg.Validation.MaxBatchSize)
	assert.Equal(t, "text", cfg.Application.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestDataSource(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = "/var/lib/timesheet"
	assert.Equal(t, "/var/lib/timesheet/timesheet.db", cfg.DataSource())

	cfg.Database.DSN = "file:test.db?cache=shared"
	assert.Equal(t, "file:test.db?cache=shared", cfg.DataSource())

	cfg.Database.Driver = sqlstore.DriverMySQL
	cfg.Database.DSN = "app:secret@tcp(db:3306)/timesheet?parseTime=true"
	opts := cfg.StoreOptions()
	assert.Equal(t, sqlstore.DriverMySQL, opts.Driver)
	assert.Equal(t, cfg.Database.DSN, opts.DSN)
	assert.Equal(t, 10, opts.MaxOpenConns)
}

func TestLimits(t *testing.T) {
	cfg := NewConfig()
	cfg.Validation.MaxBatchSize = 50

	limits := cfg.Limits()
	assert.Equal(t, 50, limits.MaxBatchSize)
	assert.Equal(t, 24*time.Hour, limits.MaxEntryDuration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = sqlstore.DriverMySQL }, "database.dsn"},
		{"sqlite without path", func(c *Config) { c.Database.Dir = "" }, "database.dir"},
		{"query timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "database.query_timeout"},
		{"write timeout", func(c *Config) { c.Database.WriteTimeout = -time.Second }, "database.write_timeout"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad timezone", func(c *Config) { c.Timesheet.DefaultTimezone = "Mars/Olympus" }, "timesheet.default_timezone"},
		{"batch size", func(c *Config) { c.Validation.MaxBatchSize = 0 }, "validation.max_batch"},
		{"max duration", func(c *Config) { c.Validation.MaxEntryDuration = 0 }, "validation.max_duration"},
		{"log format", func(c *Config) { c.Application.LogFormat = "xml" }, "application.log_format"},
		{"app timeout", func(c *Config) { c.Application.Timeout = 0 }, "application.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			var cfgErr *ConfigError
			if assert.ErrorAs(t, err, &cfgErr) {
				assert.Equal(t, tt.field, cfgErr.Field)
			}
		})
	}
}
