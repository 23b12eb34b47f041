package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
)

var (
	renderOutput     string
	renderStandalone bool
	renderStylesheet string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the task list as an HTML widget document",
	Long: `Render runs the export command (or reads --input), formats the tasks, and
writes the widget document to stdout or --output.

Payload problems never fail the command: an empty export yields the
"No tasks found." document and a malformed one yields an inline error.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	addSourceFlags(renderCmd)
	addDisplayFlags(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write the document to this file instead of stdout")
	renderCmd.Flags().BoolVar(&renderStandalone, "standalone", false, "Emit a complete HTML page")
	renderCmd.Flags().StringVar(&renderStylesheet, "stylesheet", "", "Stylesheet href (overrides widget.stylesheet)")
}

func runRender(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	now, err := referenceTime()
	if err != nil {
		return err
	}

	opts := render.Options{
		Stylesheet: s.Widget.Stylesheet,
		Standalone: renderStandalone,
	}
	if renderStylesheet != "" {
		opts.Stylesheet = renderStylesheet
	}
	if renderStandalone {
		opts.Refresh = s.Widget.RefreshInterval
	}

	r, err := newRenderer(s, opts)
	if err != nil {
		return err
	}
	res := evaluate(cmd.Context(), r, s, now)

	if renderOutput == "" {
		return r.Write(cmd.OutOrStdout(), res)
	}
	return writeDocument(renderOutput, r, res)
}

func newRenderer(s *models.Settings, opts render.Options) (*render.Renderer, error) {
	cfg, err := formatter.ConfigFromSettings(s.Display)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(formatter.New(cfg), opts, nil), nil
}

// evaluate fetches the payload and formats it as of now.
func evaluate(ctx context.Context, r *render.Renderer, s *models.Settings, now time.Time) render.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := payloadSource(s).Fetch(ctx)
	if err != nil {
		return r.Failure(err)
	}
	return r.Evaluate(payload, now)
}

// writeDocument writes the document atomically and adds the default
// stylesheet beside it when none exists.
func writeDocument(path string, r *render.Renderer, res render.Result) error {
	var doc bytes.Buffer
	if err := r.Write(&doc, res); err != nil {
		return err
	}
	if err := config.WriteFileAtomic(path, doc.Bytes(), 0o644); err != nil {
		return err
	}
	if css := config.StylesheetFile(path); !config.FileExists(css) {
		if err := os.WriteFile(css, render.DefaultStylesheet, 0o644); err != nil {
			return fmt.Errorf("failed to write stylesheet: %w", err)
		}
	}
	return nil
}
