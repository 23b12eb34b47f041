package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Global",
		keys: []helpKey{
			{"q / Ctrl+c", "Quit"},
			{"?", "Toggle help"},
			{"r", "Refresh now"},
			{"Tab", "Switch view"},
			{"1/2", "Tasks / Render logs"},
		},
	},
	{
		title: "Tasks",
		keys: []helpKey{
			{"j/k ↑/↓", "Scroll"},
			{"PgUp/PgDn", "Scroll half a page"},
		},
	},
	{
		title: "Render logs",
		keys: []helpKey{
			{"j/k ↑/↓", "Navigate logs"},
			{"Enter", "View failed payload"},
			{"Esc", "Back to list"},
			{"PgUp/PgDn", "Scroll payload"},
		},
	},
}

func renderHelp(width, height int) string {
	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	for i, section := range helpSections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(section.title))
		b.WriteString("\n")
		for _, k := range section.keys {
			b.WriteString("  " + keyStyle.Width(12).Render(k.key) + hintStyle.Render(k.desc) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("Press any key to close"))

	box := overlayStyle.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
