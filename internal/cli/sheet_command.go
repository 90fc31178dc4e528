package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"timesheet/internal/api"
	"timesheet/internal/domain"
	"timesheet/internal/services"
)

// SheetCommand prints the actor's own time in one period, day by day
type SheetCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewSheetCommand creates a new sheet command handler
func NewSheetCommand(app *App) *SheetCommand {
	return &SheetCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the sheet command: [YYYY-MM-DD]
func (c *SheetCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage("usage: timesheet sheet [YYYY-MM-DD]")
	}

	calc, err := c.businessAPI.Calendar(ctx, c.actor)
	if err != nil {
		return err
	}
	var at time.Time
	if len(args) == 1 {
		if at, err = calc.ParseStart("date", args[0]); err != nil {
			return err
		}
	}

	sheet, err := c.businessAPI.OwnTimesheet(ctx, c.actor, at)
	if err != nil {
		return err
	}
	c.printSheet(sheet, calc.Location())
	return nil
}

// printSheet prints the period, then each day with its entries and total
func (c *SheetCommand) printSheet(sheet *services.OwnTimesheet, loc *time.Location) {
	fmt.Fprintf(c.out, "%s  %s\n", sheet.Period, sheet.Label)
	if len(sheet.Days) == 0 {
		fmt.Fprintln(c.out, "No time entries found")
	}
	for _, day := range sheet.Days {
		fmt.Fprintf(c.out, "%s  %s\n", day.Date, day.Formatted)
		for _, e := range day.Entries {
			end := "running"
			if e.End != nil {
				end = e.End.In(loc).Format("15:04")
			}
			fmt.Fprintf(c.out, "  %s - %s (%s) %s: %s\n",
				e.Start.In(loc).Format("15:04"),
				end,
				services.FormatMinutes(e.DurationMinutes()),
				e.Approval,
				e.Description,
			)
		}
	}
	fmt.Fprintf(c.out, "Total: %s\n", sheet.Formatted)
}
