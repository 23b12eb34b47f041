package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// LogViewer displays failed-render logs with list and detail views.
type LogViewer struct {
	logs          []*models.RenderLog
	selectedIndex int
	viewing       bool // true = showing log payload, false = showing list
	viewport      viewport.Model
	width         int
	height        int
	scrollOffset  int
	logEntry      *models.RenderLog
	loaded        bool // whether logs have been read at least once
}

// NewLogViewer creates a new log viewer.
func NewLogViewer() *LogViewer {
	return &LogViewer{viewport: viewport.New(80, 24)}
}

// SetSize updates dimensions.
func (l *LogViewer) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.viewport.Width = width
	l.viewport.Height = height
}

// SetLogs updates the log list.
func (l *LogViewer) SetLogs(logs []*models.RenderLog) {
	l.logs = logs
	l.loaded = true
	if l.selectedIndex >= len(logs) {
		l.selectedIndex = len(logs) - 1
	}
	if l.selectedIndex < 0 {
		l.selectedIndex = 0
	}
}

// SetLogContent switches to the detail view for entry.
func (l *LogViewer) SetLogContent(entry *models.RenderLog, content string) {
	l.logEntry = entry
	l.viewing = true
	if strings.TrimSpace(content) == "" {
		content = dimStyle.Render("(empty payload)")
	}
	l.viewport.SetContent(content)
	l.viewport.GotoTop()
}

// IsViewing returns whether we're in detail view.
func (l *LogViewer) IsViewing() bool {
	return l.viewing
}

// SelectedLog returns the currently selected log entry, or nil.
func (l *LogViewer) SelectedLog() *models.RenderLog {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.logs) {
		return nil
	}
	return l.logs[l.selectedIndex]
}

// MoveUp moves the cursor up, or scrolls in detail view.
func (l *LogViewer) MoveUp() {
	if l.viewing {
		l.viewport.LineUp(1)
		return
	}
	if l.selectedIndex > 0 {
		l.selectedIndex--
		l.ensureVisible()
	}
}

// MoveDown moves the cursor down, or scrolls in detail view.
func (l *LogViewer) MoveDown() {
	if l.viewing {
		l.viewport.LineDown(1)
		return
	}
	if l.selectedIndex < len(l.logs)-1 {
		l.selectedIndex++
		l.ensureVisible()
	}
}

// PageUp scrolls the detail viewport up.
func (l *LogViewer) PageUp() {
	if l.viewing {
		l.viewport.HalfViewUp()
	}
}

// PageDown scrolls the detail viewport down.
func (l *LogViewer) PageDown() {
	if l.viewing {
		l.viewport.HalfViewDown()
	}
}

// GoBack returns to list view from detail view.
func (l *LogViewer) GoBack() {
	l.viewing = false
	l.logEntry = nil
}

func (l *LogViewer) ensureVisible() {
	if l.selectedIndex < l.scrollOffset {
		l.scrollOffset = l.selectedIndex
	}
	if l.height > 0 && l.selectedIndex >= l.scrollOffset+l.height {
		l.scrollOffset = l.selectedIndex - l.height + 1
	}
}

// View renders the log viewer.
func (l *LogViewer) View() string {
	if l.viewing {
		return l.viewDetail()
	}
	return l.viewList()
}

func (l *LogViewer) viewList() string {
	centered := dimStyle.Width(l.width).Align(lipgloss.Center)
	if !l.loaded {
		return centered.Render("\nLoading logs...")
	}
	if len(l.logs) == 0 {
		return centered.Render("\nNo failed renders logged.")
	}

	end := min(l.scrollOffset+l.height, len(l.logs))
	var lines []string
	for i := l.scrollOffset; i < end; i++ {
		line := formatLogLine(l.logs[i])
		if i == l.selectedIndex {
			line = selectedItemStyle.Width(l.width).Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	if l.scrollOffset > 0 {
		lines = append([]string{dimStyle.Render("  ▲ more")}, lines...)
	}
	if end < len(l.logs) {
		lines = append(lines, dimStyle.Render("  ▼ more"))
	}
	return strings.Join(lines, "\n")
}

// formatLogLine renders "2026-03-10 14:30  source  exit status 1".
func formatLogLine(entry *models.RenderLog) string {
	created := entry.CreatedAt
	if len(created) >= 16 {
		created = created[:10] + " " + created[11:16]
	}
	kindStyle := lipgloss.NewStyle().Foreground(colorYellow)
	if entry.Kind == models.FailureMalformed {
		kindStyle = lipgloss.NewStyle().Foreground(colorRed)
	}
	return fmt.Sprintf("%s  %s  %s",
		dimStyle.Render(created),
		kindStyle.Render(entry.Kind),
		lipgloss.NewStyle().Foreground(colorWhite).Render(firstLine(entry.Error)),
	)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (l *LogViewer) viewDetail() string {
	if l.logEntry == nil {
		return ""
	}

	headerLine := lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render(l.logEntry.Error)
	meta := dimStyle.Render(fmt.Sprintf("%s · %s · render %s · %s",
		l.logEntry.CreatedAt, l.logEntry.Kind, l.logEntry.RenderID, l.logEntry.Command))
	backHint := dimStyle.Render("Esc to go back · PgUp/PgDn to scroll")

	info := headerLine + "\n" + meta + "\n" + backHint + "\n" +
		dimStyle.Render(strings.Repeat("─", max(l.width, 0))) + "\n"

	l.viewport.Height = max(l.height-4, 1)
	l.viewport.Width = l.width
	return info + l.viewport.View()
}
