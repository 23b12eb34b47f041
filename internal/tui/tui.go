// Package tui implements the interactive task list viewer.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/source"
)

// Run launches the TUI, refreshing from src on the configured interval.
func Run(settings *models.Settings, src source.Source) error {
	model, err := NewModel(settings, src)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
