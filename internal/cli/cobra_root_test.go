package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/config"
)

const (
	demoOrg   = "a1b2c3d4-0000-4000-8000-000000000001"
	demoOlga  = "a1b2c3d4-0000-4000-8000-000000000101"
	demoMark  = "a1b2c3d4-0000-4000-8000-000000000103"
	demoAlice = "a1b2c3d4-0000-4000-8000-000000000104"
	demoEntry = "a1b2c3d4-0000-4000-8000-000000000201"
)

// runRoot executes the root command against the database in dir
func runRoot(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	loader := config.NewLoaderWithEnvironment(map[string]string{})
	root := NewRootCommand(loader, &out, &errOut)
	root.SetArgs(append([]string{"--db-dir", dir}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func seededDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	out, _, err := runRoot(t, dir, "seed", "--demo")
	require.NoError(t, err)
	require.Contains(t, out, "Organization "+demoOrg)
	return dir
}

func TestRootCommand_Seed(t *testing.T) {
	t.Run("demo", func(t *testing.T) {
		dir := t.TempDir()

		out, _, err := runRoot(t, dir, "seed", "--demo")

		require.NoError(t, err)
		assert.Contains(t, out, "Organization "+demoOrg)
		assert.Contains(t, out, "alice@example.com")
		assert.Contains(t, out, "4 time entries")
		assert.FileExists(t, filepath.Join(dir, "timesheet.db"))
	})

	t.Run("fixture file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "org.yaml")
		fixture := "organization:\n  name: Globex\nmembers:\n  - name: Hank\n    email: hank@example.com\n    role: owner\n"
		require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

		out, _, err := runRoot(t, dir, "seed", path)

		require.NoError(t, err)
		assert.Contains(t, out, "hank@example.com")
		assert.Contains(t, out, "0 time entries")
	})

	t.Run("requires a file or --demo", func(t *testing.T) {
		_, _, err := runRoot(t, t.TempDir(), "seed")

		assert.Equal(t, 2, NewErrorHandler().ExitCode(err))
	})
}

func TestRootCommand_Migrate(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runRoot(t, dir, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Schema is up to date\n", out)

	out, _, err = runRoot(t, dir, "migrate", "--rollback")
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back migration")
}

func TestRootCommand_BusinessCommands(t *testing.T) {
	dir := seededDir(t)

	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantExit int
	}{
		{
			name:    "period for a date",
			args:    []string{"--org", demoOrg, "--user", demoAlice, "period", "2025-03-20"},
			wantOut: "2025-03-2  Mar 16 - Mar 31, 2025",
		},
		{
			name:    "manager review queue",
			args:    []string{"--org", demoOrg, "--user", demoMark, "timesheets"},
			wantOut: "Bob Employee",
		},
		{
			name:    "owner export",
			args:    []string{"--org", demoOrg, "--user", demoOlga, "export", "period=2025-03-1"},
			wantOut: "Landing page",
		},
		{
			name:    "own entries",
			args:    []string{"--org", demoOrg, "--user", demoAlice, "entries"},
			wantOut: demoEntry,
		},
		{
			name:    "own timesheet by day",
			args:    []string{"--org", demoOrg, "--user", demoAlice, "sheet", "2025-03-05"},
			wantOut: "2025-03-05  3h 30m",
		},
		{
			name:     "missing identity",
			args:     []string{"timesheets"},
			wantExit: 2,
		},
		{
			name:     "user outside the organization",
			args:     []string{"--org", demoOrg, "--user", "a1b2c3d4-0000-4000-8000-000000000999", "timesheets"},
			wantExit: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runRoot(t, dir, tt.args...)

			if tt.wantExit != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantExit, NewErrorHandler().ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestRootCommand_SubmitLogsNotification(t *testing.T) {
	dir := seededDir(t)

	out, logs, err := runRoot(t, dir, "--org", demoOrg, "--user", demoAlice, "--log-format", "json",
		"transition", "submit", demoEntry)

	require.NoError(t, err)
	assert.Contains(t, out, "submit: 1 updated, 3 notified")
	assert.Contains(t, logs, `"msg":"approval transition applied"`)
}

func TestRootCommand_OutboxFlag(t *testing.T) {
	dir := seededDir(t)
	outbox := filepath.Join(t.TempDir(), "outbox")

	_, _, err := runRoot(t, dir, "--org", demoOrg, "--user", demoOlga, "--outbox-dir", outbox,
		"remind", demoEntry)
	require.NoError(t, err)

	files, err := os.ReadDir(outbox)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRootCommand_InvalidFlagValue(t *testing.T) {
	_, _, err := runRoot(t, t.TempDir(), "--log-format", "xml", "migrate")

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "application.log_format", cfgErr.Field)
}
