package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/models"
)

var (
	emptyStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff6464"))
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// Terminal renders results as a colored table. Terminals have no alpha
// channel, so faded rows are blended toward the background color instead.
type Terminal struct {
	Palette        models.Palette
	StartIndicator string
	Background     models.RGB
	Width          int // total width budget, 0 = unlimited
}

// NewTerminal creates a terminal renderer for a formatter configuration on a
// dark background.
func NewTerminal(cfg formatter.Config) *Terminal {
	return &Terminal{
		Palette:        cfg.Palette,
		StartIndicator: cfg.StartIndicator,
	}
}

// View renders a result.
func (t *Terminal) View(res Result) string {
	switch res.Kind {
	case KindEmpty:
		return emptyStyle.Render("No tasks found.")
	case KindError:
		return errorStyle.Render("Error: " + res.Err.Error() + ".")
	}

	rows := make([][]string, len(res.List.Tasks))
	for i, task := range res.List.Tasks {
		rows[i] = []string{
			task.StartMarker,
			task.ID,
			task.DueLabel(),
			task.Description,
			task.Project,
			task.Tags,
			task.UrgencyLabel(),
		}
	}
	headers := []string{t.StartIndicator, "ID", "DUE", "DESCRIPTION", "PROJECT", "TAGS", "URG"}
	if limit := t.descriptionLimit(headers, rows); limit > 0 {
		for _, row := range rows {
			row[colDescription] = ansi.Truncate(row[colDescription], limit, "…")
		}
	}

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if col == colID || col == colDue || col == colUrgency {
				style = style.Align(lipgloss.Right)
			}
			if row == table.HeaderRow {
				fg := t.Palette.Header
				if col == colTags {
					fg = t.Palette.Tags
				}
				return style.Bold(true).Foreground(lipgloss.Color(fg.Hex()))
			}
			task := res.List.Tasks[row]
			fg := task.Color
			if col == colTags {
				fg = formatter.TagColor(t.Palette, task.Color)
			}
			return style.Foreground(lipgloss.Color(t.Blend(fg)))
		})

	return strings.TrimRight(tbl.Render(), "\n")
}

// Column indexes of the task table.
const (
	colStart = iota
	colID
	colDue
	colDescription
	colProject
	colTags
	colUrgency
)

// descriptionLimit returns the width the description column may use so the
// table fits in Width, or 0 when no truncation is needed.
func (t *Terminal) descriptionLimit(headers []string, rows [][]string) int {
	if t.Width <= 0 {
		return 0
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	other := 0
	for i, w := range widths {
		if i != colDescription {
			other += w
		}
	}
	// Two columns of padding per cell plus the hidden border.
	avail := t.Width - other - 2*len(widths) - (len(widths) + 1)
	if avail >= widths[colDescription] {
		return 0
	}
	if avail < 8 {
		avail = 8
	}
	return avail
}

// Blend mixes c over the background by its alpha and returns a hex color.
func (t *Terminal) Blend(c models.Color) string {
	fg := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	bg := colorful.Color{R: float64(t.Background.R) / 255, G: float64(t.Background.G) / 255, B: float64(t.Background.B) / 255}
	return bg.BlendRgb(fg, c.Alpha).Clamped().Hex()
}
