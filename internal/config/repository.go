package config

import (
	"context"
	"fmt"
	"os"

	"timesheet/internal/repository/sqlstore"
)

// CreateRepository opens the configured store, creating the SQLite
// directory first when needed
func CreateRepository(ctx context.Context, config *Config) (*sqlstore.Store, error) {
	if config.Database.Driver == sqlstore.DriverSQLite && config.Database.DSN == "" {
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := sqlstore.Open(ctx, config.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (*sqlstore.Store, error) {
	store, err := sqlstore.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return store, nil
}
