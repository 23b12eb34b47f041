package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/taskwidget/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show or change global settings",
	Args:    cobra.NoArgs,
	RunE:    runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting in ~/.taskwidget/settings.yaml.

Keys:
  source.command            export command line
  source.timeout            export timeout (e.g. 5s)
  source.data_dir           Taskwarrior data directory watched by the daemon
  display.max_entries       maximum rows
  display.ordering          due | urgency
  display.start_indicator   marker for started tasks
  display.validate_schema   true | false
  display.palette.<name>    header, urgent, warning, neutral, tags (#rrggbb or r,g,b)
  widget.refresh_interval   daemon refresh interval (e.g. 10s)
  widget.stylesheet         stylesheet href in the widget document
  widget.output             snapshot path (default ~/.taskwidget/widget.html)
  widget.port               daemon HTTP port (0 = dynamic)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsPath
		if path == "" {
			var err error
			if path, err = config.SettingsPath(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsPath != "" {
		return fmt.Errorf("settings set only edits the global settings file; edit %s by hand", settingsPath)
	}
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	key, value := args[0], args[1]
	if err := config.SetSetting(s, key, value); err != nil {
		return err
	}
	if err := config.SaveSettings(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", styleSuccess.Render("Set"), styleCommand.Render(key), value)
	return nil
}
