package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML configuration file
const ConfigFileEnv = "TS_CONFIG_FILE"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config  *Config
	environ map[string]string
}

// NewLoader creates a loader reading the process environment
func NewLoader() *Loader {
	return &Loader{config: NewConfig()}
}

// NewLoaderWithEnvironment creates a loader reading environ instead of the
// process environment
func NewLoaderWithEnvironment(environ map[string]string) *Loader {
	return &Loader{config: NewConfig(), environ: environ}
}

// Load loads configuration in order: defaults, the YAML file named by
// TS_CONFIG_FILE, then environment variables.
func (l *Loader) Load() (*Config, error) {
	if path := l.lookup(ConfigFileEnv); path != "" {
		if err := l.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides.
// An explicit config file override replaces TS_CONFIG_FILE.
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	if overrides != nil && overrides.ConfigFile != nil && *overrides.ConfigFile != "" {
		if err := l.loadFile(*overrides.ConfigFile); err != nil {
			return nil, err
		}
		if err := l.loadEnvironment(); err != nil {
			return nil, err
		}
	} else if _, err := l.Load(); err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(l.config, overrides)
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

func (l *Loader) lookup(key string) string {
	if l.environ != nil {
		return l.environ[key]
	}
	return os.Getenv(key)
}

func (l *Loader) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, l.config); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (l *Loader) loadEnvironment() error {
	opts := env.Options{}
	if l.environ != nil {
		opts.Environment = l.environ
	}
	if err := env.ParseWithOptions(l.config, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	ConfigFile *string

	// Database overrides
	DBDriver       *string
	DBDSN          *string
	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration
	DBWriteTimeout *time.Duration

	// Server overrides
	Addr *string

	// Timesheet overrides
	Timezone        *string
	AdminSeesAdmins *bool

	// Notify overrides
	OutboxDir *string

	// Application overrides
	Verbose   *bool
	LogFormat *string

	// CLI identity overrides
	OrgID  *string
	UserID *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.DBDriver != nil {
		config.Database.Driver = *overrides.DBDriver
	}
	if overrides.DBDSN != nil {
		config.Database.DSN = *overrides.DBDSN
	}
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}
	if overrides.DBWriteTimeout != nil {
		config.Database.WriteTimeout = *overrides.DBWriteTimeout
	}

	if overrides.Addr != nil {
		config.Server.Addr = *overrides.Addr
	}

	if overrides.Timezone != nil {
		config.Timesheet.DefaultTimezone = *overrides.Timezone
	}
	if overrides.AdminSeesAdmins != nil {
		config.Timesheet.AdminSeesAdmins = *overrides.AdminSeesAdmins
	}

	if overrides.OutboxDir != nil {
		config.Notify.OutboxDir = *overrides.OutboxDir
	}

	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.LogFormat != nil {
		config.Application.LogFormat = *overrides.LogFormat
	}

	if overrides.OrgID != nil {
		config.CLI.OrgID = *overrides.OrgID
	}
	if overrides.UserID != nil {
		config.CLI.UserID = *overrides.UserID
	}
}
