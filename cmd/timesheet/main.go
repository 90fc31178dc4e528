package main

import (
	"fmt"
	"os"

	"timesheet/internal/cli"
	"timesheet/internal/config"
)

func main() {
	// Flags are applied on top of the file and environment by the root command
	loader := config.NewLoader()

	root := cli.NewRootCommand(loader, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.NewErrorHandler().ExitCode(err))
	}
}
