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

// EntriesCommand lists the actor's own time entries
type EntriesCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewEntriesCommand creates a new entries command handler
func NewEntriesCommand(app *App) *EntriesCommand {
	return &EntriesCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the entries command: [from=YYYY-MM-DD] [to=YYYY-MM-DD]
func (c *EntriesCommand) Execute(ctx context.Context, args []string) error {
	positional, opts, err := splitOptions(args, "from", "to")
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return errUsage("usage: timesheet entries [from=YYYY-MM-DD] [to=YYYY-MM-DD]")
	}

	calc, err := c.businessAPI.Calendar(ctx, c.actor)
	if err != nil {
		return err
	}

	var from, to *time.Time
	if raw, ok := opts["from"]; ok {
		t, err := calc.ParseStart("from", raw)
		if err != nil {
			return err
		}
		from = &t
	}
	if raw, ok := opts["to"]; ok {
		t, err := calc.ParseEnd("to", raw)
		if err != nil {
			return err
		}
		to = &t
	}

	entries, err := c.businessAPI.ListOwnEntries(ctx, c.actor, from, to)
	if err != nil {
		return err
	}
	return c.printEntries(entries, calc.Location())
}

// printEntries prints one line per entry in the format:
// id  start - end (duration) approval: description
// with times in the organization's timezone.
func (c *EntriesCommand) printEntries(entries []domain.TimeEntry, loc *time.Location) error {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No time entries found")
		return nil
	}

	for _, e := range entries {
		end := "running"
		if e.End != nil {
			end = e.End.In(loc).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(c.out, "%s  %s - %s (%s) %s: %s\n",
			e.ID,
			e.Start.In(loc).Format("2006-01-02 15:04"),
			end,
			services.FormatMinutes(e.DurationMinutes()),
			e.Approval,
			e.Description,
		)
	}
	return nil
}
