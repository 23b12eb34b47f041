package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/buildinfo"
)

// Styles for daemon version output (matching CLI styles).
var (
	dStyleBrand   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "30", Dark: "45"})
	dStyleVersion = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"})
	dStyleLabel   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "240"})
	dStyleValue   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"})
)

var daemonVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := buildinfo.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  %s %s\n", dStyleBrand.Render("taskwidgetd"), dStyleVersion.Render(info.Version))
		fmt.Fprintf(out, "    %s  %s\n", dStyleLabel.Render("Commit"), dStyleValue.Render(info.Commit))
		fmt.Fprintf(out, "    %s   %s\n", dStyleLabel.Render("Built"), dStyleValue.Render(info.BuildDate))
		fmt.Fprintf(out, "    %s %s\n", dStyleLabel.Render("OS/Arch"), dStyleValue.Render(info.Platform))
		fmt.Fprintf(out, "    %s      %s\n", dStyleLabel.Render("Go"), dStyleValue.Render(info.GoVersion))
	},
}

func init() {
	rootCmd.AddCommand(daemonVersionCmd)
}
