package models

import "time"

// Ordering strategies.
const (
	OrderingDue     = "due"     // due date first, urgency as tie-breaker
	OrderingUrgency = "urgency" // urgency only, highest first
)

// DefaultCommand is the export invocation used when none is configured.
const DefaultCommand = "task +READY -PARENT export"

// DefaultStartIndicator marks started tasks.
const DefaultStartIndicator = "🟊"

// Palette holds the widget colors. Due-date buckets map to Urgent (overdue),
// Warning (due today) and Neutral (future or undated).
type Palette struct {
	Header  RGB `yaml:"header" toml:"header"`
	Urgent  RGB `yaml:"urgent" toml:"urgent"`
	Warning RGB `yaml:"warning" toml:"warning"`
	Neutral RGB `yaml:"neutral" toml:"neutral"`
	Tags    RGB `yaml:"tags" toml:"tags"`
}

// DefaultPalette returns the stock widget colors.
func DefaultPalette() Palette {
	return Palette{
		Header:  RGB{R: 255, G: 255, B: 255},
		Urgent:  RGB{R: 255, G: 100, B: 100},
		Warning: RGB{R: 255, G: 200, B: 0},
		Neutral: RGB{R: 255, G: 255, B: 255},
		Tags:    RGB{R: 50, G: 225, B: 50},
	}
}

// DisplayConfig controls how tasks are formatted.
type DisplayConfig struct {
	MaxEntries     int     `yaml:"max_entries" toml:"max_entries"`
	Ordering       string  `yaml:"ordering" toml:"ordering"` // "due" | "urgency"
	StartIndicator string  `yaml:"start_indicator" toml:"start_indicator"`
	ValidateSchema bool    `yaml:"validate_schema" toml:"validate_schema"`
	Palette        Palette `yaml:"palette" toml:"palette"`
}

// SourceConfig describes how the task export is obtained.
type SourceConfig struct {
	Command string        `yaml:"command" toml:"command"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	DataDir string        `yaml:"data_dir" toml:"data_dir"` // empty = ~/.task
}

// WidgetConfig holds presentation-host settings.
type WidgetConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" toml:"refresh_interval"`
	Stylesheet      string        `yaml:"stylesheet" toml:"stylesheet"`
	Output          string        `yaml:"output" toml:"output"` // empty = ~/.taskwidget/widget.html
	Port            int           `yaml:"port" toml:"port"`     // 0 = dynamic
}

// Settings represents global application settings.
// This corresponds to ~/.taskwidget/settings.yaml (or settings.toml).
type Settings struct {
	Version int           `yaml:"version" toml:"version"`
	Source  SourceConfig  `yaml:"source" toml:"source"`
	Display DisplayConfig `yaml:"display" toml:"display"`
	Widget  WidgetConfig  `yaml:"widget" toml:"widget"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Source: SourceConfig{
			Command: DefaultCommand,
			Timeout: 5 * time.Second,
		},
		Display: DisplayConfig{
			MaxEntries:     20,
			Ordering:       OrderingDue,
			StartIndicator: DefaultStartIndicator,
			ValidateSchema: true,
			Palette:        DefaultPalette(),
		},
		Widget: WidgetConfig{
			RefreshInterval: 10 * time.Second,
			Stylesheet:      "style.css",
		},
	}
}
