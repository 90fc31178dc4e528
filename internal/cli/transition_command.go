package cli

import (
	"context"
	"fmt"
	"io"

	"timesheet/internal/api"
	"timesheet/internal/domain"
	"timesheet/internal/services"
	"timesheet/internal/validation"
)

// TransitionCommand applies an approval action to a batch of entries
type TransitionCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewTransitionCommand creates a new transition command handler
func NewTransitionCommand(app *App) *TransitionCommand {
	return &TransitionCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the transition command: <action> <ids...> [period=YYYY-MM-H]
func (c *TransitionCommand) Execute(ctx context.Context, args []string) error {
	positional, opts, err := splitOptions(args, "period")
	if err != nil {
		return err
	}
	if len(positional) < 2 {
		return errUsage("usage: timesheet transition <submit|unsubmit|approve|reject|withdraw> <ids...> [period=YYYY-MM-H]")
	}

	result, err := c.businessAPI.Transition(ctx, c.actor, positional[0], validation.BatchPayload{
		IDs:    positional[1:],
		Period: opts["period"],
	})
	if err != nil {
		return err
	}
	printResult(c.out, result)
	return nil
}

// RemindCommand emails the owners of entries without changing them
type RemindCommand struct {
	businessAPI api.BusinessAPI
	actor       domain.Actor
	out         io.Writer
}

// NewRemindCommand creates a new remind command handler
func NewRemindCommand(app *App) *RemindCommand {
	return &RemindCommand{businessAPI: app.businessAPI, actor: app.actor, out: app.out}
}

// Execute runs the remind command: <ids...> [period=YYYY-MM-H]
func (c *RemindCommand) Execute(ctx context.Context, args []string) error {
	positional, opts, err := splitOptions(args, "period")
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return errUsage("usage: timesheet remind <ids...> [period=YYYY-MM-H]")
	}

	result, err := c.businessAPI.Transition(ctx, c.actor, api.ActionRemind, validation.BatchPayload{
		IDs:    positional,
		Period: opts["period"],
	})
	if err != nil {
		return err
	}
	printResult(c.out, result)
	return nil
}

func printResult(out io.Writer, r *services.TransitionResult) {
	fmt.Fprintf(out, "%s: %d updated, %d notified", r.Action, r.Updated, r.Notified)
	if r.Period != "" {
		fmt.Fprintf(out, " (%s)", r.Period)
	}
	fmt.Fprintln(out)
}
