package tui

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
	"github.com/watchfire-io/taskwidget/internal/source"
)

// fetchCmd runs the source and formats its payload.
func fetchCmd(src source.Source, r *render.Renderer, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		now := time.Now()
		payload, err := src.Fetch(ctx)
		if err != nil {
			return RenderedMsg{Result: r.Failure(err), At: now, Failure: models.FailureSource}
		}
		msg := RenderedMsg{Result: r.Evaluate(payload, now), At: now, Payload: payload}
		if msg.Result.Kind == render.KindError {
			msg.Failure = models.FailureMalformed
		}
		return msg
	}
}

// writeRenderLogCmd stores a failed render and reloads the log list.
func writeRenderLogCmd(entry models.RenderLog, payload []byte) tea.Cmd {
	return func() tea.Msg {
		if _, err := config.WriteRenderLog(entry, payload); err != nil {
			return LogsLoadedMsg{Err: fmt.Errorf("failed to write render log: %w", err)}
		}
		logs, err := config.ListRenderLogs()
		return LogsLoadedMsg{Logs: logs, Err: err}
	}
}

func tickCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}

func loadLogsCmd() tea.Cmd {
	return func() tea.Msg {
		logs, err := config.ListRenderLogs()
		return LogsLoadedMsg{Logs: logs, Err: err}
	}
}

func loadLogContentCmd(logID string, printer *render.PayloadPrinter) tea.Cmd {
	return func() tea.Msg {
		entry, payload, err := config.ReadRenderLog(logID)
		if err != nil {
			return LogContentMsg{Err: err}
		}
		var buf bytes.Buffer
		if err := printer.Print(&buf, payload); err != nil {
			return LogContentMsg{Err: err}
		}
		return LogContentMsg{Entry: entry, Content: buf.String()}
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
