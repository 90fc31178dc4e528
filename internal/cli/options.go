package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"timesheet/internal/errors"
	"timesheet/internal/services"
)

// splitOptions separates key=value options from positional arguments, in the
// style of "export period=2025-03-1". Unknown keys are rejected.
func splitOptions(args []string, allowed ...string) ([]string, map[string]string, error) {
	var positional []string
	opts := make(map[string]string)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			positional = append(positional, arg)
			continue
		}
		if !slices.Contains(allowed, key) {
			return nil, nil, errors.NewInvalidInputError("option", key, "unknown option")
		}
		opts[key] = value
	}
	return positional, opts, nil
}

// printGrouped prints grouped rows oldest period first
func printGrouped(out io.Writer, grouped services.GroupedTimesheet) {
	for _, id := range grouped.Periods() {
		fmt.Fprintf(out, "%s\n", id)
		for _, row := range grouped[id] {
			fmt.Fprintf(out, "  %-30s %10s\n", row.User.Name, row.TotalHours)
		}
	}
}
