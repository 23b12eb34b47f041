// Package cmd implements the taskwidgetd command line.
package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/daemon"
	"github.com/watchfire-io/taskwidget/internal/daemon/refresher"
	"github.com/watchfire-io/taskwidget/internal/daemon/tray"
)

var (
	foreground bool
	port       int
)

var rootCmd = &cobra.Command{
	Use:   "taskwidgetd",
	Short: "Keep the Taskwarrior widget up to date",
	Long: `taskwidgetd periodically runs the Taskwarrior export command, renders
the task list to ~/.taskwidget/widget.html, and serves it on localhost.`,
	SilenceUsage: true,
	RunE:         runDaemon,
}

// Execute runs the daemon command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVar(&foreground, "foreground", false, "Run in foreground (no system tray)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides widget.port, 0 for dynamic allocation)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.SetPrefix("[taskwidgetd] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon already running on port %d (PID %d)", info.Port, info.PID)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	listenPort := settings.Widget.Port
	if cmd.Flags().Changed("port") {
		listenPort = port
	}

	d, err := daemon.New(settings, listenPort)
	if err != nil {
		return err
	}

	if foreground {
		log.Println("Running in foreground mode (no system tray)")
		return runForeground(d)
	}
	log.Println("Running in background mode (with system tray)")
	return runWithTray(d)
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(d *daemon.Daemon) error {
	errCh := make(chan error, 1)
	if err := d.Start(errCh); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case serveErr = <-errCh:
		log.Printf("Server error: %v", serveErr)
	}

	d.Stop()
	fmt.Println("Daemon stopped")
	return serveErr
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(d *daemon.Daemon) error {
	d.Refresher().OnSnapshot(func(s refresher.Snapshot) {
		tray.UpdateTasks(s.Result)
	})

	var startErr error
	onStart := func() {
		errCh := make(chan error, 1)
		if err := d.Start(errCh); err != nil {
			startErr = err
			tray.Quit()
			return
		}

		go func() {
			if err := <-errCh; err != nil {
				log.Printf("Server error: %v", err)
				tray.Quit()
			}
		}()

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		d.Stop()
		fmt.Println("Daemon stopped")
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(d, onStart, onExit)
	return startErr
}
