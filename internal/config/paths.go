// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"

	"github.com/watchfire-io/taskwidget/internal/models"
)

const (
	// GlobalDirName is the name of the global taskwidget directory.
	GlobalDirName = ".taskwidget"

	// LogsDirName is the name of the render log directory.
	LogsDirName = "logs"

	// TaskDataDirName is Taskwarrior's default data directory under $HOME.
	TaskDataDirName = ".task"
)

// File names
const (
	DaemonFileName       = "daemon.yaml"
	SettingsFileName     = "settings.yaml"
	SettingsTOMLFileName = "settings.toml"
	SnapshotFileName     = "widget.html"
	StylesheetFileName   = "style.css"
)

// GlobalDir returns the path to the global taskwidget directory (~/.taskwidget/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

func globalFile(name string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml file.
func GlobalDaemonFile() (string, error) {
	return globalFile(DaemonFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalFile(SettingsFileName)
}

// GlobalSettingsTOMLFile returns the path to the optional settings.toml file.
func GlobalSettingsTOMLFile() (string, error) {
	return globalFile(SettingsTOMLFileName)
}

// GlobalLogsDir returns the path to the render log directory.
func GlobalLogsDir() (string, error) {
	return globalFile(LogsDirName)
}

// SnapshotFile returns where the rendered widget document is written.
func SnapshotFile(s *models.Settings) (string, error) {
	if s.Widget.Output != "" {
		return expandHome(s.Widget.Output)
	}
	return globalFile(SnapshotFileName)
}

// StylesheetFile returns the stylesheet path that sits next to a snapshot.
func StylesheetFile(snapshot string) string {
	return filepath.Join(filepath.Dir(snapshot), StylesheetFileName)
}

// TaskDataDir returns Taskwarrior's data directory: the configured one,
// then $TASKDATA, then ~/.task.
func TaskDataDir(s *models.Settings) (string, error) {
	if s.Source.DataDir != "" {
		return expandHome(s.Source.DataDir)
	}
	if env := os.Getenv("TASKDATA"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, TaskDataDirName), nil
}

// expandHome replaces a leading ~/ with the home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}

// EnsureGlobalDir creates the global taskwidget directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the render log directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
