package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/taskwidget/internal/render"
)

func renderStatusBar(m *Model, width int) string {
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + getKeyHints(m)

	right := ""
	if m.rendered {
		when := m.renderedAt.Format("15:04:05")
		switch m.result.Kind {
		case render.KindError:
			right = lipgloss.NewStyle().Foreground(colorRed).Bold(true).Render("⚠ failed "+when) + " "
		default:
			right = lipgloss.NewStyle().Foreground(colorGreen).Render("updated "+when) + " "
		}
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	base := keyHint("q", "quit") + "  " + keyHint("?", "help") + "  " + keyHint("r", "refresh") + "  " + keyHint("Tab", "switch")
	if m.view == viewLogs {
		if m.logViewer.IsViewing() {
			return base + "  " + keyHint("Esc", "back")
		}
		return base + "  " + keyHint("Enter", "view")
	}
	return base + "  " + keyHint("j/k", "scroll")
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
