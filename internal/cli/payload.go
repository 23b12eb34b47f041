package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/render"
)

var (
	payloadSchema bool
	payloadCheck  bool
)

var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Print or check the raw export payload",
	Long: `Payload prints the raw output of the export command, pretty-printed and
highlighted. With --check it reports whether the payload would render, and
with --schema it prints the JSON Schema the payload is validated against.`,
	Args: cobra.NoArgs,
	RunE: runPayload,
}

func init() {
	addSourceFlags(payloadCmd)
	payloadCmd.Flags().BoolVar(&payloadSchema, "schema", false, "Print the export JSON Schema")
	payloadCmd.Flags().BoolVar(&payloadCheck, "check", false, "Validate the payload instead of printing it")
}

func runPayload(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	printer := render.NewPayloadPrinter(out)

	if payloadSchema {
		return printer.Print(out, []byte(formatter.SchemaText()))
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	payload, err := payloadSource(s).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	if !payloadCheck {
		return printer.Print(out, payload)
	}

	cfg, err := formatter.ConfigFromSettings(s.Display)
	if err != nil {
		return err
	}
	list, err := formatter.New(cfg).Format(payload)
	switch {
	case errors.Is(err, formatter.ErrEmptyInput):
		fmt.Fprintln(out, styleWarning.Render("Empty payload:")+" the widget shows \"No tasks found.\"")
		return nil
	case err != nil:
		fmt.Fprintln(out, styleError.Render("Invalid payload: ")+err.Error())
		return err
	}
	fmt.Fprintf(out, "%s %s, %s shown\n",
		styleSuccess.Render("Valid payload:"), plural(list.Total, "task"), plural(len(list.Tasks), "row"))
	return nil
}
