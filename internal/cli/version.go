package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/buildinfo"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.Get()
		out := cmd.OutOrStdout()
		if versionJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		fmt.Fprintf(out, "  %s %s\n", styleBrand.Render("taskwidget"), styleVersion.Render(info.Version))
		fmt.Fprintf(out, "    %s  %s\n", styleLabel.Render("Commit"), styleValue.Render(info.Commit))
		fmt.Fprintf(out, "    %s   %s\n", styleLabel.Render("Built"), styleValue.Render(info.BuildDate))
		fmt.Fprintf(out, "    %s %s\n", styleLabel.Render("OS/Arch"), styleValue.Render(info.Platform))
		fmt.Fprintf(out, "    %s      %s\n", styleLabel.Render("Go"), styleValue.Render(info.GoVersion))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print as JSON")
}
