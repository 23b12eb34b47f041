package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
)

var logsLimit int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List failed renders recorded by the daemon",
	Args:  cobra.NoArgs,
	RunE:  runLogsList,
}

var logsShowCmd = &cobra.Command{
	Use:   "show <log-id>",
	Short: "Show a failed render and the payload that caused it",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogsShow,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 20, "Maximum number of logs to list")
	logsCmd.AddCommand(logsShowCmd)
}

func runLogsList(cmd *cobra.Command, args []string) error {
	logs, err := config.ListRenderLogs()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(logs) == 0 {
		fmt.Fprintln(out, "No failed renders logged.")
		return nil
	}
	if logsLimit > 0 && len(logs) > logsLimit {
		logs = logs[:logsLimit]
	}
	for _, entry := range logs {
		badge := badgeSource
		if entry.Kind == models.FailureMalformed {
			badge = badgeMalformed
		}
		fmt.Fprintf(out, "  %s  %s  %s\n",
			styleCommand.Render(entry.LogID),
			badge.Render(entry.Kind),
			entry.Error,
		)
	}
	fmt.Fprintln(out, styleHint.Render("\n  Use 'taskwidget logs show <log-id>' to see the payload."))
	return nil
}

func runLogsShow(cmd *cobra.Command, args []string) error {
	entry, payload, err := config.ReadRenderLog(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", styleLabel.Render("Log:    "), styleValue.Render(entry.LogID))
	fmt.Fprintf(out, "%s  %s\n", styleLabel.Render("Render: "), styleValue.Render(entry.RenderID))
	fmt.Fprintf(out, "%s  %s\n", styleLabel.Render("Time:   "), styleValue.Render(entry.CreatedAt))
	fmt.Fprintf(out, "%s  %s\n", styleLabel.Render("Command:"), styleValue.Render(entry.Command))
	fmt.Fprintf(out, "%s  %s\n", styleLabel.Render("Kind:   "), styleValue.Render(entry.Kind))
	fmt.Fprintf(out, "%s  %s\n\n", styleLabel.Render("Error:  "), styleError.Render(entry.Error))
	if len(payload) == 0 {
		fmt.Fprintln(out, styleHint.Render("(no payload)"))
		return nil
	}
	return render.NewPayloadPrinter(out).Print(out, payload)
}
