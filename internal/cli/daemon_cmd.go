package cli

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/config"
)

var daemonNoTray bool

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the taskwidget daemon",
	Long:  `Manage the taskwidgetd process that keeps the widget snapshot up to date.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

var daemonRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the daemon to refresh the widget now",
	RunE:  runDaemonRefresh,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonNoTray, "no-tray", false, "Run without a system tray icon")

	daemonCmd.AddCommand(daemonRefreshCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	out := cmd.OutOrStdout()
	if running && info != nil {
		fmt.Fprintf(out, "Daemon is already running (PID %d, %s).\n", info.PID, info.URL())
		return nil
	}

	fmt.Fprint(out, "Starting daemon...")
	if err := startDaemon(daemonNoTray); err != nil {
		fmt.Fprintln(out)
		return err
	}

	_, info, err = config.IsDaemonRunning()
	if err != nil || info == nil {
		fmt.Fprintln(out, " started.")
		return nil
	}
	fmt.Fprintf(out, " started (PID %d, %s).\n", info.PID, info.URL())
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !running || info == nil {
		fmt.Fprintln(out, "Daemon is not running.")
		return nil
	}

	uptime := time.Since(info.StartedAt).Truncate(time.Second)

	fmt.Fprintln(out, styleSuccess.Render("Daemon is running."))
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("URL:        "), info.URL())
	fmt.Fprintf(out, "  %s %d\n", styleLabel.Render("PID:        "), info.PID)
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Uptime:     "), uptime)
	snapshot := info.Snapshot
	if age, ok := config.SnapshotAge(info, time.Now()); ok {
		snapshot += styleHint.Render(fmt.Sprintf(" (written %s ago)", age.Truncate(time.Second)))
	} else {
		snapshot += styleWarning.Render(" (not written yet)")
	}
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Snapshot:   "), snapshot)

	health, err := fetchDaemonHealth(info)
	if err != nil {
		fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Last render:"), styleWarning.Render("unavailable ("+err.Error()+")"))
		return nil
	}
	if health.RenderID == "" {
		fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Last render:"), styleHint.Render("pending"))
		return nil
	}
	result := plural(health.Tasks, "task")
	switch health.Kind {
	case "error":
		result = styleError.Render("error") + styleHint.Render(" (see 'taskwidget logs')")
	case "empty":
		result = "no tasks"
	}
	fmt.Fprintf(out, "  %s %s, %s\n", styleLabel.Render("Last render:"), health.RenderedAt, result)
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	out := cmd.OutOrStdout()
	if !running || info == nil {
		fmt.Fprintln(out, "Daemon is not running.")
		return nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stillRunning, _, err := config.IsDaemonRunning()
		if err == nil && !stillRunning {
			fmt.Fprintln(out, "Daemon stopped.")
			return nil
		}
	}
	return fmt.Errorf("daemon did not stop within timeout")
}

func runDaemonRefresh(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return err
	}
	if !running || info == nil {
		return fmt.Errorf("daemon is not running; start it with 'taskwidget daemon start'")
	}
	if err := requestDaemonRefresh(info); err != nil {
		return fmt.Errorf("failed to request refresh: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Refresh requested.")
	return nil
}
