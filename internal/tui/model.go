package tui

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
	"github.com/watchfire-io/taskwidget/internal/source"
)

// Views.
const (
	viewTasks = iota
	viewLogs
)

// Model is the root TUI model.
type Model struct {
	settings *models.Settings
	src      source.Source
	renderer *render.Renderer
	terminal *render.Terminal
	printer  *render.PayloadPrinter

	width  int
	height int
	view   int

	tasks     viewport.Model
	logViewer *LogViewer
	spinner   spinner.Model
	showHelp  bool

	loading    bool
	result     render.Result
	rendered   bool
	renderedAt time.Time
	tickGen    int
	err        error

	lastFailure string
}

// NewModel creates the initial TUI model.
func NewModel(settings *models.Settings, src source.Source) (Model, error) {
	cfg, err := formatter.ConfigFromSettings(settings.Display)
	if err != nil {
		return Model{}, err
	}
	// Errors are shown in the view and kept as render logs; log output
	// would corrupt the screen.
	renderer := render.NewRenderer(formatter.New(cfg), render.Options{}, log.New(io.Discard, "", 0))

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(colorCyan)

	return Model{
		settings:  settings,
		src:       src,
		renderer:  renderer,
		terminal:  render.NewTerminal(cfg),
		printer:   render.NewPayloadPrinter(os.Stdout),
		tasks:     viewport.New(80, 20),
		logViewer: NewLogViewer(),
		spinner:   sp,
		loading:   true,
	}, nil
}

// recordFailure returns a command writing a render log when a failure starts
// or its message changes, matching what the daemon records.
func (m *Model) recordFailure(msg RenderedMsg) tea.Cmd {
	if msg.Failure == "" || msg.Result.Err == nil {
		m.lastFailure = ""
		return nil
	}
	text := msg.Result.Err.Error()
	if text == m.lastFailure {
		return nil
	}
	m.lastFailure = text
	return writeRenderLogCmd(models.RenderLog{
		RenderID:  uuid.NewString(),
		Command:   m.src.String(),
		Kind:      msg.Failure,
		Error:     text,
		CreatedAt: msg.At.UTC().Format(time.RFC3339),
	}, msg.Payload)
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchCmd(m.src, m.renderer, m.settings.Source.Timeout),
		loadLogsCmd(),
		m.spinner.Tick,
	)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RenderedMsg:
		m.loading = false
		m.rendered = true
		m.result = msg.Result
		m.renderedAt = msg.At
		m.updateTasks()
		m.tickGen++
		cmds := []tea.Cmd{tickCmd(m.settings.Widget.RefreshInterval, m.tickGen)}
		if cmd := m.recordFailure(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case TickMsg:
		if msg.Gen != m.tickGen || m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(fetchCmd(m.src, m.renderer, m.settings.Source.Timeout), m.spinner.Tick)

	case LogsLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, clearErrorAfter(5 * time.Second)
		}
		m.logViewer.SetLogs(msg.Logs)
		return m, nil

	case LogContentMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, clearErrorAfter(5 * time.Second)
		}
		m.logViewer.SetLogContent(msg.Entry, msg.Content)
		return m, nil

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, globalKeys.Quit) && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, globalKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, globalKeys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, globalKeys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(fetchCmd(m.src, m.renderer, m.settings.Source.Timeout), m.spinner.Tick)
	case key.Matches(msg, globalKeys.Tab):
		if m.view == viewTasks {
			return m.switchView(viewLogs)
		}
		return m.switchView(viewTasks)
	case key.Matches(msg, globalKeys.Tasks):
		return m.switchView(viewTasks)
	case key.Matches(msg, globalKeys.Logs):
		return m.switchView(viewLogs)
	}

	if m.view == viewLogs {
		switch {
		case key.Matches(msg, scrollKeys.Up):
			m.logViewer.MoveUp()
		case key.Matches(msg, scrollKeys.Down):
			m.logViewer.MoveDown()
		case key.Matches(msg, scrollKeys.PageUp):
			m.logViewer.PageUp()
		case key.Matches(msg, scrollKeys.PageDown):
			m.logViewer.PageDown()
		case key.Matches(msg, scrollKeys.Back):
			m.logViewer.GoBack()
		case key.Matches(msg, scrollKeys.Enter):
			if entry := m.logViewer.SelectedLog(); entry != nil && !m.logViewer.IsViewing() {
				return m, loadLogContentCmd(entry.LogID, m.printer)
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, scrollKeys.Up):
		m.tasks.LineUp(1)
	case key.Matches(msg, scrollKeys.Down):
		m.tasks.LineDown(1)
	case key.Matches(msg, scrollKeys.PageUp):
		m.tasks.HalfViewUp()
	case key.Matches(msg, scrollKeys.PageDown):
		m.tasks.HalfViewDown()
	}
	return m, nil
}

func (m Model) switchView(v int) (tea.Model, tea.Cmd) {
	if m.view == v {
		return m, nil
	}
	m.view = v
	if v == viewLogs {
		return m, loadLogsCmd()
	}
	return m, nil
}

// bodyHeight is the height left for the active view after the header,
// tab line, and status bar.
func (m *Model) bodyHeight() int {
	return max(m.height-3, 1)
}

func (m *Model) updateDimensions() {
	m.terminal.Width = m.width
	m.tasks.Width = m.width
	m.tasks.Height = m.bodyHeight()
	m.logViewer.SetSize(m.width, m.bodyHeight())
	m.updateTasks()
}

func (m *Model) updateTasks() {
	if !m.rendered {
		return
	}
	m.tasks.SetContent(m.terminal.View(m.result))
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.showHelp {
		return renderHelp(m.width, m.height)
	}

	var body string
	switch {
	case m.view == viewLogs:
		body = m.logViewer.View()
	case !m.rendered:
		body = dimStyle.Width(m.width).Align(lipgloss.Center).Render("\n" + m.spinner.View() + " Loading tasks...")
	default:
		body = m.tasks.View()
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)

	return strings.Join([]string{
		m.renderHeader(),
		m.renderTabs(),
		body,
		renderStatusBar(&m, m.width),
	}, "\n")
}

func (m *Model) renderHeader() string {
	title := headerStyle.Render("taskwidget")
	info := dimStyle.Render(" · " + m.src.String())
	if m.rendered && m.result.Kind == render.KindTasks {
		info += dimStyle.Render(fmt.Sprintf(" · %d of %d tasks · %s order",
			len(m.result.List.Tasks), m.result.List.Total, m.orderingName()))
	}
	spin := ""
	if m.loading {
		spin = " " + m.spinner.View()
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + info + spin)
}

func (m *Model) orderingName() string {
	if m.settings.Display.Ordering == "" {
		return models.OrderingDue
	}
	return m.settings.Display.Ordering
}

func (m *Model) renderTabs() string {
	tabs := []string{"1 Tasks", "2 Render logs"}
	for i, t := range tabs {
		if i == m.view {
			tabs[i] = activeTabStyle.Render(t)
		} else {
			tabs[i] = inactiveTabStyle.Render(t)
		}
	}
	return strings.Join(tabs, dimStyle.Render(" │ "))
}
