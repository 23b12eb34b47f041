// Package cli implements the taskwidget CLI commands.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/source"
)

var rootCmd = &cobra.Command{
	Use:   "taskwidget",
	Short: "Show Taskwarrior tasks as a desktop widget",
	Long: `taskwidget renders the output of 'task export' as a compact, color-coded
task list: an HTML document for desktop widget hosts, or a table in the terminal.`,
	SilenceUsage: true,
}

// Persistent flags shared by the rendering commands.
var (
	settingsPath string
	inputPath    string
	maxEntries   int
	ordering     string
	atDate       string
)

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default ~/.taskwidget/settings.yaml or settings.toml)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(payloadCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}

// addSourceFlags registers --input on commands that read a payload.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Read the export payload from a file ('-' for stdin) instead of running the command")
}

// addDisplayFlags registers flags that override display settings.
func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&maxEntries, "max", "n", 0, "Maximum number of tasks to show (overrides display.max_entries)")
	cmd.Flags().StringVar(&ordering, "ordering", "", "Ordering: due or urgency (overrides display.ordering)")
	cmd.Flags().StringVar(&atDate, "at", "", "Compute due offsets as of this date (YYYY-MM-DD or RFC 3339)")
}

// loadSettings loads settings and applies display flag overrides.
func loadSettings(cmd *cobra.Command) (*models.Settings, error) {
	var (
		s   *models.Settings
		err error
	)
	if settingsPath != "" {
		s, err = config.LoadSettingsFile(settingsPath)
	} else {
		s, err = config.LoadSettings()
	}
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("max"); f != nil && f.Changed {
		if err := config.SetSetting(s, "display.max_entries", f.Value.String()); err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("ordering"); f != nil && f.Changed {
		if err := config.SetSetting(s, "display.ordering", f.Value.String()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// payloadSource returns the --input file when set, otherwise the configured
// export command.
func payloadSource(s *models.Settings) source.Source {
	if inputPath != "" {
		return source.NewFile(inputPath)
	}
	return source.NewCommand(s.Source.Command, s.Source.Timeout)
}

// referenceTime parses --at, defaulting to now.
func referenceTime() (time.Time, error) {
	if atDate == "" {
		return time.Now(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", atDate, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, atDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: expected YYYY-MM-DD or RFC 3339", atDate)
	}
	return t, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
