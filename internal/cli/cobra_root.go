package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"timesheet/internal/config"
	"timesheet/internal/repository/sqlstore/migrations"
	"timesheet/internal/seed"
	"timesheet/internal/server"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	config *config.Config
	out    io.Writer
	errOut io.Writer
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader, out, errOut io.Writer) *RootCommand {
	root := &RootCommand{
		loader: loader,
		out:    out,
		errOut: errOut,
	}

	root.cmd = &cobra.Command{
		Use:   "timesheet",
		Short: "Semi-monthly timesheet approval for organizations",
		Long: `timesheet groups tracked time into half-month periods and runs the
submit, approve and reject workflow between employees and their reviewers.

EXAMPLES:
  timesheet seed --demo                              # Load the demo organization
  timesheet serve --addr :8080                       # Serve the JSON API
  timesheet --org <org> --user <user> timesheets     # Show the review queue
  timesheet --org <org> --user <user> transition submit <id> <id>
  timesheet --org <org> --user <user> export period=2025-03-1 > march.csv

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > config file > defaults

  TS_CONFIG_FILE                  YAML configuration file
  TS_DB_DRIVER                    sqlite or mysql (default: sqlite)
  TS_DB_DSN                       Data source name (required for mysql)
  TS_DB_DIR                       SQLite directory (default: ~/.timesheet)
  TS_SERVER_ADDR                  Listen address (default: :8080)
  TS_TIMEZONE                     Fallback organization timezone (default: UTC)
  TS_NOTIFY_OUTBOX_DIR            Write notification emails to this directory
  TS_ORG_ID, TS_USER_ID           Identity used by the business commands`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}
	root.cmd.SetOut(out)
	root.cmd.SetErr(errOut)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// ExecuteContext runs the root command with ctx as the parent of every command context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs replaces os.Args, for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML configuration file (overrides TS_CONFIG_FILE)")

	// Database configuration
	flags.String("db-driver", "", "Database driver, sqlite or mysql (overrides TS_DB_DRIVER)")
	flags.String("db-dsn", "", "Database data source name (overrides TS_DB_DSN)")
	flags.String("db-dir", "", "SQLite directory (overrides TS_DB_DIR)")
	flags.String("db-filename", "", "SQLite filename (overrides TS_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TS_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TS_DB_WRITE_TIMEOUT)")

	// Server configuration
	flags.String("addr", "", "HTTP listen address (overrides TS_SERVER_ADDR)")

	// Timesheet configuration
	flags.String("timezone", "", "Fallback organization timezone (overrides TS_TIMEZONE)")
	flags.Bool("admin-sees-admins", false, "Let admins review other admins (overrides TS_APPROVAL_ADMIN_SEES_ADMINS)")

	// Notify configuration
	flags.String("outbox-dir", "", "Notification outbox directory (overrides TS_NOTIFY_OUTBOX_DIR)")

	// Application configuration
	flags.Bool("verbose", false, "Enable debug logging (overrides TS_APP_VERBOSE)")
	flags.String("log-format", "", "Log format, text or json (overrides TS_LOG_FORMAT)")

	// Identity
	flags.String("org", "", "Organization id to act in (overrides TS_ORG_ID)")
	flags.String("user", "", "User id to act as (overrides TS_USER_ID)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := NewRuntime(ctx, r.config, r.errOut)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := server.New(rt.API, rt.Logger, server.Options{
				Addr:            r.config.Server.Addr,
				ReadTimeout:     r.config.Server.ReadTimeout,
				WriteTimeout:    r.config.Server.WriteTimeout,
				ShutdownTimeout: r.config.Server.ShutdownTimeout,
				DateFormat:      r.config.Export.DateFormat,
				TimeFormat:      r.config.Export.TimeFormat,
			})
			return srv.Run(ctx)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply pending schema migrations. With --rollback the most recently
applied migration is reverted instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), r.config.Application.Timeout)
			defer cancel()

			// opening the store applies pending migrations
			store, err := config.CreateRepository(ctx, r.config)
			if err != nil {
				return err
			}
			defer store.Close()

			rollback, _ := cmd.Flags().GetBool("rollback")
			if !rollback {
				fmt.Fprintln(r.out, "Schema is up to date")
				return nil
			}

			version, err := migrations.RollbackLast(ctx, store.DB(), store.Dialect())
			if err != nil {
				return err
			}
			if version == 0 {
				fmt.Fprintln(r.out, "No migrations to roll back")
				return nil
			}
			fmt.Fprintf(r.out, "Rolled back migration %d\n", version)
			return nil
		},
	}
	migrateCmd.Flags().Bool("rollback", false, "Revert the last applied migration")

	seedCmd := &cobra.Command{
		Use:   "seed [file.yaml]",
		Short: "Load an organization fixture",
		Long: `Load an organization with its members, projects and time entries from a
YAML fixture. With --demo the bundled demo organization is loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), r.config.Application.Timeout)
			defer cancel()

			demo, _ := cmd.Flags().GetBool("demo")
			fixture, err := r.loadFixture(demo, args)
			if err != nil {
				return err
			}

			store, err := config.CreateRepository(ctx, r.config)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := seed.Apply(ctx, store, fixture)
			if err != nil {
				return err
			}
			r.printSeed(result)
			return nil
		},
	}
	seedCmd.Flags().Bool("demo", false, "Load the bundled demo organization")

	r.cmd.AddCommand(serveCmd, migrateCmd, seedCmd)

	business := []struct {
		use, short, long string
	}{
		{"period [YYYY-MM-DD]", "Show the period containing a date", "Show the period containing a date, today by default."},
		{"timesheets", "Show submitted time waiting for review", "Show submitted time waiting for the caller's review, grouped by period."},
		{"board", "Show visible time by approval state", "Show all time visible to the caller split into submitted, unsubmitted, approved and rejected."},
		{"transition <action> <ids...> [period=YYYY-MM-H]", "Apply an approval action to entries", `Apply submit, unsubmit, approve, reject or withdraw to a batch of time entries.

Example:
  timesheet transition approve 3f0e... 91c2... period=2025-03-1`},
		{"remind <ids...> [period=YYYY-MM-H]", "Remind the owners of entries", "Send a reminder to the owners of the given entries without changing them."},
		{"entries [from=YYYY-MM-DD] [to=YYYY-MM-DD]", "List your own time entries", "List the caller's own time entries, optionally within a date range. Bare dates are days in the organization's timezone."},
		{"sheet [YYYY-MM-DD]", "Show your own timesheet by day", "Show the caller's entries in the period containing a date, grouped by day with daily and period totals."},
		{"export [period=YYYY-MM-H]", "Export a period as CSV", "Write the detailed CSV export of a period, the current one by default."},
	}
	for _, b := range business {
		name, _, _ := strings.Cut(b.use, " ")
		r.cmd.AddCommand(&cobra.Command{
			Use:   b.use,
			Short: b.short,
			Long:  b.long,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.runBusiness(cmd.Context(), name, args)
			},
		})
	}
}

// runBusiness resolves the configured identity and hands off to the command registry
func (r *RootCommand) runBusiness(parent context.Context, name string, args []string) error {
	ctx, cancel := context.WithTimeout(parent, r.config.Application.Timeout)
	defer cancel()

	rt, err := NewRuntime(ctx, r.config, r.errOut)
	if err != nil {
		return err
	}
	defer rt.Close()

	actor, err := rt.API.ResolveActor(ctx, r.config.CLI.OrgID, r.config.CLI.UserID)
	if err != nil {
		return NewErrorHandler().Handle("resolve identity", err)
	}

	app := NewApp(rt.API, r.config, actor, r.out)
	return app.Run(ctx, append([]string{name}, args...))
}

func (r *RootCommand) loadFixture(demo bool, args []string) (*seed.Fixture, error) {
	switch {
	case demo && len(args) == 0:
		return seed.Demo()
	case !demo && len(args) == 1:
		return seed.LoadFile(args[0])
	default:
		return nil, errUsage("usage: timesheet seed <file.yaml> | --demo")
	}
}

func (r *RootCommand) printSeed(result *seed.Result) {
	fmt.Fprintf(r.out, "Organization %s\n", result.OrganizationID)

	emails := make([]string, 0, len(result.Users))
	for email := range result.Users {
		emails = append(emails, email)
	}
	slices.Sort(emails)
	for _, email := range emails {
		fmt.Fprintf(r.out, "  %-30s user %s member %s\n", email, result.Users[email], result.Members[email])
	}
	fmt.Fprintf(r.out, "%d time entries\n", len(result.TimeEntries))
}

// loadConfig loads configuration, letting flags that were set explicitly win
func (r *RootCommand) loadConfig() error {
	if r.loader == nil {
		return fmt.Errorf("configuration loader not initialized")
	}

	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	stringFlag("config", &overrides.ConfigFile)
	stringFlag("db-driver", &overrides.DBDriver)
	stringFlag("db-dsn", &overrides.DBDSN)
	stringFlag("db-dir", &overrides.DBDir)
	stringFlag("db-filename", &overrides.DBFilename)
	stringFlag("addr", &overrides.Addr)
	stringFlag("timezone", &overrides.Timezone)
	stringFlag("outbox-dir", &overrides.OutboxDir)
	stringFlag("log-format", &overrides.LogFormat)
	stringFlag("org", &overrides.OrgID)
	stringFlag("user", &overrides.UserID)

	if flags.Changed("db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		overrides.DBQueryTimeout = &v
	}
	if flags.Changed("db-write-timeout") {
		v, _ := flags.GetDuration("db-write-timeout")
		overrides.DBWriteTimeout = &v
	}
	if flags.Changed("admin-sees-admins") {
		v, _ := flags.GetBool("admin-sees-admins")
		overrides.AdminSeesAdmins = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	cfg, err := r.loader.LoadWithOverrides(overrides)
	if err != nil {
		return err
	}
	r.config = cfg
	return nil
}
