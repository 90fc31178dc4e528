package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sqlite/*.sql mysql/*.sql
var migrationsFS embed.FS

// Dialect selects the schema flavour to apply
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// RunMigrations executes all pending migrations for the dialect
func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	dirty, err := getDirtyMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to check migration state: %w", err)
	}
	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state; failed migration(s): %v", dirty)
	}

	migrations, err := LoadMigrations(dialect)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(ctx, db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

// RollbackLast reverts the most recently applied migration, if any
func RollbackLast(ctx context.Context, db *sql.DB, dialect Dialect) (int, error) {
	migrations, err := LoadMigrations(dialect)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !applied[m.Version] {
			continue
		}
		for _, stmt := range splitStatements(m.Down) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return 0, fmt.Errorf("failed to revert migration %d: %w", m.Version, err)
			}
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version); err != nil {
			return 0, err
		}
		return m.Version, nil
	}
	return 0, nil
}

// LoadMigrations reads the embedded migrations for a dialect, ordered by version
func LoadMigrations(dialect Dialect) ([]Migration, error) {
	sub, err := fs.Sub(migrationsFS, string(dialect))
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("unknown dialect %q: %w", dialect, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version := extractVersion(entry.Name())
		if version == 0 {
			continue
		}

		upSQL, err := fs.ReadFile(sub, entry.Name())
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := fs.ReadFile(sub, downFile)
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(entry.Name(), ".up.sql"),
			Up:      string(upSQL),
			Down:    string(downSQL),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		dirty BOOLEAN NOT NULL DEFAULT FALSE
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations WHERE dirty = FALSE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func getDirtyMigrations(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations WHERE dirty = TRUE ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirty []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		dirty = append(dirty, version)
	}
	return dirty, rows.Err()
}

// applyMigration marks the version dirty first; MySQL DDL cannot be rolled back,
// so a failure leaves the marker in place until someone repairs the schema.
func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version, dirty) VALUES (?, TRUE)", migration.Version); err != nil {
		return err
	}

	for _, stmt := range splitStatements(migration.Up) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	_, err := db.ExecContext(ctx, "UPDATE schema_migrations SET dirty = FALSE WHERE version = ?", migration.Version)
	return err
}

// splitStatements breaks a migration file into single statements.
// Migration files must not contain semicolons inside literals.
func splitStatements(script string) []string {
	var statements []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(stripComments(part)); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

func stripComments(sqlText string) string {
	lines := strings.Split(sqlText, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
