package tui

import (
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
)

// RenderedMsg carries the outcome of one fetch and format. Payload and
// Failure are kept so a failed render can be written to the render logs.
type RenderedMsg struct {
	Result  render.Result
	At      time.Time
	Payload []byte
	Failure string // models.FailureSource, models.FailureMalformed or empty
}

// TickMsg triggers the next periodic refresh. Ticks from an older
// schedule are ignored.
type TickMsg struct {
	Gen int
}

// LogsLoadedMsg carries the list of render logs.
type LogsLoadedMsg struct {
	Logs []*models.RenderLog
	Err  error
}

// LogContentMsg carries a single render log's payload.
type LogContentMsg struct {
	Entry   *models.RenderLog
	Content string
	Err     error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}
