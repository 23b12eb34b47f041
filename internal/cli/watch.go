package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/watchfire-io/taskwidget/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live task list in the terminal",
	Long: `Watch opens a full-screen view of the task list that refreshes on the
configured interval. Failed renders can be inspected from the logs view.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addSourceFlags(watchCmd)
	watchCmd.Flags().IntVarP(&maxEntries, "max", "n", 0, "Maximum number of tasks to show (overrides display.max_entries)")
	watchCmd.Flags().StringVar(&ordering, "ordering", "", "Ordering: due or urgency (overrides display.ordering)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch needs a terminal; use 'taskwidget show' or 'taskwidget render' instead")
	}
	if inputPath == "-" {
		return fmt.Errorf("watch cannot read stdin; pass a file to --input")
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	return tui.Run(s, payloadSource(s))
}
