package cli

import (
	"context"
	"io"

	"timesheet/internal/api"
	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/export"
)

// ExportCommand writes the detailed CSV export of one period
type ExportCommand struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	actor       domain.Actor
	out         io.Writer
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{businessAPI: app.businessAPI, config: app.config, actor: app.actor, out: app.out}
}

// Execute runs the export command: [period=YYYY-MM-H]
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	positional, opts, err := splitOptions(args, "period")
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return errUsage("usage: timesheet export [period=YYYY-MM-H]")
	}

	entries, info, err := c.businessAPI.DetailedExport(ctx, c.actor, opts["period"])
	if err != nil {
		return err
	}

	writer := export.NewCSVWriter(export.Options{
		DateFormat: c.config.Export.DateFormat,
		TimeFormat: c.config.Export.TimeFormat,
		Location:   info.From.Location(),
	})
	return writer.Write(c.out, entries)
}
