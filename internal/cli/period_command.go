package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"timesheet/internal/api"
	"timesheet/internal/domain"
)

// PeriodCommand prints the half-month period containing a date
type PeriodCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewPeriodCommand creates a new period command handler
func NewPeriodCommand(app *App) *PeriodCommand {
	return &PeriodCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the period command
func (c *PeriodCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage("usage: timesheet period [YYYY-MM-DD]")
	}

	var at time.Time
	if len(args) == 1 {
		calc, err := c.businessAPI.Calendar(ctx, c.actor)
		if err != nil {
			return err
		}
		if at, err = calc.ParseStart("date", args[0]); err != nil {
			return err
		}
	}

	info, err := c.businessAPI.CurrentPeriod(ctx, c.actor, at)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s  %s\n", info.ID, info.Label)
	return nil
}
