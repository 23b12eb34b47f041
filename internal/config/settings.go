package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// SettingsPath returns the settings file in use. settings.toml is only used
// when it exists and settings.yaml does not.
func SettingsPath() (string, error) {
	yamlPath, err := GlobalSettingsFile()
	if err != nil {
		return "", err
	}
	if FileExists(yamlPath) {
		return yamlPath, nil
	}
	tomlPath, err := GlobalSettingsTOMLFile()
	if err != nil {
		return "", err
	}
	if FileExists(tomlPath) {
		return tomlPath, nil
	}
	return yamlPath, nil
}

// LoadSettings loads the global settings from ~/.taskwidget/settings.yaml
// or settings.toml. If neither file exists, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFile(path)
}

// LoadSettingsFile loads settings from path over the defaults. The format is
// chosen by extension.
func LoadSettingsFile(path string) (*models.Settings, error) {
	var (
		s   *models.Settings
		err error
	)
	if strings.HasSuffix(path, ".toml") {
		s = models.NewSettings()
		if FileExists(path) {
			err = LoadTOML(path, s)
		}
	} else {
		s, err = LoadYAMLOrDefault(path, models.NewSettings)
	}
	if err != nil {
		return nil, err
	}
	if err := ValidateSettings(s); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings saves the global settings to the settings file in use.
func SaveSettings(settings *models.Settings) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".toml") {
		return fmt.Errorf("settings are loaded from %s; edit it by hand or remove it to use settings.yaml", path)
	}
	return SaveYAML(path, settings)
}

// ValidateSettings rejects settings the widget cannot run with.
func ValidateSettings(s *models.Settings) error {
	switch s.Display.Ordering {
	case "", models.OrderingDue, models.OrderingUrgency:
	default:
		return fmt.Errorf("unknown ordering %q", s.Display.Ordering)
	}
	if s.Display.MaxEntries <= 0 {
		return fmt.Errorf("display.max_entries must be positive, got %d", s.Display.MaxEntries)
	}
	if s.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if s.Widget.RefreshInterval < time.Second {
		return fmt.Errorf("widget.refresh_interval must be at least 1s, got %s", s.Widget.RefreshInterval)
	}
	if s.Widget.Port < 0 || s.Widget.Port > 65535 {
		return fmt.Errorf("widget.port out of range: %d", s.Widget.Port)
	}
	return nil
}

// SettingKeys lists the keys accepted by SetSetting, in display order.
var SettingKeys = []string{
	"source.command",
	"source.timeout",
	"source.data_dir",
	"display.max_entries",
	"display.ordering",
	"display.start_indicator",
	"display.validate_schema",
	"display.palette.header",
	"display.palette.urgent",
	"display.palette.warning",
	"display.palette.neutral",
	"display.palette.tags",
	"widget.refresh_interval",
	"widget.stylesheet",
	"widget.output",
	"widget.port",
}

// SetSetting assigns a single dotted key from its string form and validates
// the result. s is left unchanged on error.
func SetSetting(s *models.Settings, key, value string) error {
	next := *s
	if err := setSetting(&next, key, value); err != nil {
		return err
	}
	if err := ValidateSettings(&next); err != nil {
		return err
	}
	*s = next
	return nil
}

func setSetting(s *models.Settings, key, value string) error {
	switch key {
	case "source.command":
		s.Source.Command = value
	case "source.timeout":
		return setDuration(&s.Source.Timeout, key, value)
	case "source.data_dir":
		s.Source.DataDir = value
	case "display.max_entries":
		return setInt(&s.Display.MaxEntries, key, value)
	case "display.ordering":
		s.Display.Ordering = value
	case "display.start_indicator":
		s.Display.StartIndicator = value
	case "display.validate_schema":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.Display.ValidateSchema = b
	case "display.palette.header":
		return setColor(&s.Display.Palette.Header, key, value)
	case "display.palette.urgent":
		return setColor(&s.Display.Palette.Urgent, key, value)
	case "display.palette.warning":
		return setColor(&s.Display.Palette.Warning, key, value)
	case "display.palette.neutral":
		return setColor(&s.Display.Palette.Neutral, key, value)
	case "display.palette.tags":
		return setColor(&s.Display.Palette.Tags, key, value)
	case "widget.refresh_interval":
		return setDuration(&s.Widget.RefreshInterval, key, value)
	case "widget.stylesheet":
		s.Widget.Stylesheet = value
	case "widget.output":
		s.Widget.Output = value
	case "widget.port":
		return setInt(&s.Widget.Port, key, value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func setDuration(dst *time.Duration, key, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setColor(dst *models.RGB, key, value string) error {
	c, err := models.ParseRGB(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = c
	return nil
}
