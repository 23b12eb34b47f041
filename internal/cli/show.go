package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/render"
)

var showWidth int

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls"},
	Short:   "Print the task list as a table in the terminal",
	Args:    cobra.NoArgs,
	RunE:    runShow,
}

func init() {
	addSourceFlags(showCmd)
	addDisplayFlags(showCmd)
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 0, "Table width (default: terminal width)")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	now, err := referenceTime()
	if err != nil {
		return err
	}

	r, err := newRenderer(s, render.Options{})
	if err != nil {
		return err
	}
	res := evaluate(cmd.Context(), r, s, now)

	cfg, _ := formatter.ConfigFromSettings(s.Display)
	t := render.NewTerminal(cfg)
	t.Width = showWidth
	if t.Width == 0 {
		t.Width = terminalWidth()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.View(res))
	if res.Kind == render.KindTasks && res.List.Total > len(res.List.Tasks) {
		fmt.Fprintln(out, styleHint.Render(fmt.Sprintf("  %d more not shown", res.List.Total-len(res.List.Tasks))))
	}
	return nil
}

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
