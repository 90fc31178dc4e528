package cli

import (
	"context"
	"io"
	"log/slog"

	"timesheet/internal/api"
	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/logging"
	"timesheet/internal/repository/sqlstore"
	"timesheet/internal/services"
)

// App represents the main CLI application acting as one member
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	actor       domain.Actor
	out         io.Writer
	registry    *CommandRegistry
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config, actor domain.Actor, out io.Writer) *App {
	app := &App{
		businessAPI: businessAPI,
		config:      cfg,
		actor:       actor,
		out:         out,
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// Run executes the named command with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return NewErrorHandler().Handle("run", errUsage(a.registry.GetUsage()))
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

// Runtime holds everything built from a loaded configuration
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *sqlstore.Store
	Services *services.ServiceContainer
	API      api.BusinessAPI
}

// NewRuntime opens the store and wires the services. Logs go to logOut.
func NewRuntime(ctx context.Context, cfg *config.Config, logOut io.Writer) (*Runtime, error) {
	logger := logging.New(logOut, cfg.Application.LogFormat, cfg.Application.Verbose)

	store, err := config.CreateRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dispatcher, err := config.CreateDispatcher(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	container := services.NewServiceContainer(store, dispatcher, logger, services.Options{
		DefaultTimezone: cfg.Timesheet.DefaultTimezone,
		AdminSeesAdmins: cfg.Timesheet.AdminSeesAdmins,
		AppURL:          cfg.Timesheet.AppURL,
		Limits:          cfg.Limits(),
	})

	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Services: container,
		API:      api.NewBusinessAPI(container, cfg.Limits()),
	}, nil
}

// Close releases the store
func (r *Runtime) Close() error {
	return r.Store.Close()
}
