// Package main is the entry point for the taskwidget CLI.
package main

import (
	"os"

	"github.com/watchfire-io/taskwidget/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
