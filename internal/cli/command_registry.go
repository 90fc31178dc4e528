package cli

import (
	"context"
	"slices"
	"strings"

	"timesheet/internal/errors"
)

// Command represents a CLI command acting on behalf of the app's actor
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	// Register all commands
	registry.Register("period", NewPeriodCommand(app))
	registry.Register("timesheets", NewTimesheetsCommand(app))
	registry.Register("board", NewBoardCommand(app))
	registry.Register("transition", NewTransitionCommand(app))
	registry.Register("remind", NewRemindCommand(app))
	registry.Register("entries", NewEntriesCommand(app))
	registry.Register("sheet", NewSheetCommand(app))
	registry.Register("export", NewExportCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Execute runs the specified command with the given arguments. Failures are
// reported with user-facing messages.
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	if err := command.Execute(ctx, args); err != nil {
		return NewErrorHandler().Handle(commandName, err)
	}
	return nil
}

// Names returns the registered command names in order
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetUsage returns the usage string for the CLI
func (r *CommandRegistry) GetUsage() string {
	return "usage: timesheet " + strings.Join(r.Names(), "|") + " [args]"
}
