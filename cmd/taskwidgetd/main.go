// Package main is the entry point for the taskwidgetd daemon.
package main

import (
	"os"

	"github.com/watchfire-io/taskwidget/internal/daemon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
