package cli

import (
	"context"
	"fmt"
	"io"

	"timesheet/internal/api"
	"timesheet/internal/domain"
	"timesheet/internal/services"
)

// TimesheetsCommand prints submitted time waiting for the actor's review
type TimesheetsCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewTimesheetsCommand creates a new timesheets command handler
func NewTimesheetsCommand(app *App) *TimesheetsCommand {
	return &TimesheetsCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the timesheets command
func (c *TimesheetsCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage("usage: timesheet timesheets")
	}

	pending, err := c.businessAPI.PendingTimesheets(ctx, c.actor)
	if err != nil {
		return err
	}
	if pending.Remain == 0 {
		fmt.Fprintln(c.out, "No timesheets waiting for review")
		return nil
	}

	fmt.Fprintf(c.out, "%d people waiting for review\n", pending.Remain)
	printGrouped(c.out, pending.Data)
	return nil
}

// BoardCommand prints visible time split by approval state
type BoardCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewBoardCommand creates a new board command handler
func NewBoardCommand(app *App) *BoardCommand {
	return &BoardCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the board command
func (c *BoardCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage("usage: timesheet board")
	}

	board, err := c.businessAPI.ApprovalBoard(ctx, c.actor)
	if err != nil {
		return err
	}

	sections := []struct {
		title string
		data  services.GroupedTimesheet
	}{
		{"Submitted", board.Submitted},
		{"Unsubmitted", board.Unsubmitted},
		{"Approved", board.Approved},
		{"Rejected", board.Rejected},
	}
	for _, section := range sections {
		fmt.Fprintf(c.out, "== %s ==\n", section.title)
		if len(section.data) == 0 {
			fmt.Fprintln(c.out, "  (none)")
			continue
		}
		printGrouped(c.out, section.data)
	}
	return nil
}
