// Package render turns task payloads into widget documents.
package render

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/models"
)

// DefaultStylesheet is written next to the snapshot when no stylesheet exists.
//
//go:embed style.css
var DefaultStylesheet []byte

// Kind classifies what a render produced.
type Kind int

const (
	KindTasks Kind = iota // task table
	KindEmpty             // "No tasks found."
	KindError             // inline error message
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindError:
		return "error"
	default:
		return "tasks"
	}
}

// Result describes one render.
type Result struct {
	Kind Kind
	List formatter.List
	Err  error // set when Kind is KindError
}

// Options controls document emission.
type Options struct {
	Stylesheet string        // href of the stylesheet link
	Standalone bool          // wrap the widget in a full HTML page
	Refresh    time.Duration // meta refresh for standalone pages, 0 disables
}

// Renderer runs the whole pipeline for one payload: format, then emit markup.
// It never returns payload errors; those become part of the document.
type Renderer struct {
	formatter *formatter.Formatter
	opts      Options
	logger    *log.Logger
}

// NewRenderer creates a Renderer. A nil logger means log.Default().
func NewRenderer(f *formatter.Formatter, opts Options, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{formatter: f, opts: opts, logger: logger}
}

// Formatter returns the formatter used by the renderer.
func (r *Renderer) Formatter() *formatter.Formatter {
	return r.formatter
}

// Render formats payload and writes the document to w. The returned error is
// only ever a write error.
func (r *Renderer) Render(w io.Writer, payload []byte) (Result, error) {
	return r.RenderAt(w, payload, time.Now())
}

// RenderAt is Render with an explicit "now".
func (r *Renderer) RenderAt(w io.Writer, payload []byte, now time.Time) (Result, error) {
	res := r.Evaluate(payload, now)
	return res, r.Write(w, res)
}

// Evaluate runs the formatter and classifies the outcome without writing.
// Malformed payloads are logged here, once per call.
func (r *Renderer) Evaluate(payload []byte, now time.Time) Result {
	list, err := r.formatter.FormatAt(payload, now)
	switch {
	case errors.Is(err, formatter.ErrEmptyInput):
		return Result{Kind: KindEmpty}
	case err != nil:
		r.logger.Printf("[render] %v", err)
		return Result{Kind: KindError, Err: err}
	case len(list.Tasks) == 0:
		return Result{Kind: KindEmpty, List: list}
	default:
		return Result{Kind: KindTasks, List: list}
	}
}

// Failure builds the result for a payload that could not be obtained at all,
// such as a failing export command, and logs it.
func (r *Renderer) Failure(err error) Result {
	r.logger.Printf("[render] %v", err)
	return Result{Kind: KindError, Err: err}
}

// Write emits the document for a result.
func (r *Renderer) Write(w io.Writer, res Result) error {
	data := r.documentData(res)
	if err := documentTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to write widget document: %w", err)
	}
	return nil
}

type headerData struct {
	Indicator string
	Color     template.CSS
	TagsColor template.CSS
}

type rowData struct {
	Class     string
	Color     template.CSS
	TagsColor template.CSS
	Start     string
	ID        string
	Due       string
	Desc      string
	Project   string
	Tags      string
	Urgency   string
}

type documentData struct {
	Standalone     bool
	RefreshSeconds int
	Stylesheet     string
	Kind           string
	Header         headerData
	Rows           []rowData
	Error          string
}

func (r *Renderer) documentData(res Result) documentData {
	cfg := r.formatter.Config()
	data := documentData{
		Standalone:     r.opts.Standalone,
		RefreshSeconds: int(r.opts.Refresh / time.Second),
		Stylesheet:     r.opts.Stylesheet,
		Kind:           res.Kind.String(),
	}

	switch res.Kind {
	case KindError:
		data.Error = res.Err.Error()
		return data
	case KindEmpty:
		return data
	}

	data.Header = headerData{
		Indicator: cfg.StartIndicator,
		Color:     cssColor(cfg.Palette.Header.WithAlpha(1)),
		TagsColor: cssColor(cfg.Palette.Tags.WithAlpha(1)),
	}
	data.Rows = make([]rowData, len(res.List.Tasks))
	for i, t := range res.List.Tasks {
		data.Rows[i] = rowData{
			Class:     t.Bucket.String(),
			Color:     cssColor(t.Color),
			TagsColor: cssColor(formatter.TagColor(cfg.Palette, t.Color)),
			Start:     t.StartMarker,
			ID:        t.ID,
			Due:       t.DueLabel(),
			Desc:      t.Description,
			Project:   t.Project,
			Tags:      t.Tags,
			Urgency:   t.UrgencyLabel(),
		}
	}
	return data
}

// cssColor marks a generated rgba() value as safe for a style attribute.
func cssColor(c models.Color) template.CSS {
	return template.CSS(c.CSS())
}

var documentTemplate = template.Must(template.New("document").Parse(`
{{- define "widget" -}}
<div id="taskwarrior-widget-container">
{{- if eq .Kind "tasks"}}
<link rel="stylesheet" type="text/css" href="{{.Stylesheet}}" />
<table>
<thead>
<tr class="header" style="color: {{.Header.Color}}">
<th class="star">{{.Header.Indicator}}</th>
<th class="num">ID</th>
<th class="num">DUE</th>
<th>DESCRIPTION</th>
<th>PROJECT</th>
<th style="color: {{.Header.TagsColor}}">TAGS</th>
<th class="num">URG</th>
</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr class="{{.Class}}" style="color: {{.Color}}">
<td class="star">{{.Start}}</td>
<td class="num">{{.ID}}</td>
<td class="num">{{.Due}}</td>
<td>{{.Desc}}</td>
<td>{{.Project}}</td>
<td style="color: {{.TagsColor}}">{{.Tags}}</td>
<td class="num">{{.Urgency}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{- else if eq .Kind "empty"}}
<p><strong>No tasks found.</strong></p>
{{- else}}
<p><strong class="error">Error: {{.Error}}.</strong></p>
{{- end}}
</div>
{{end -}}
{{- if .Standalone -}}
<!doctype html>
<html>
<head>
<meta charset="utf-8">
{{- if gt .RefreshSeconds 0}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
{{- end}}
<title>taskwidget</title>
</head>
<body>
{{template "widget" .}}
</body>
</html>
{{else -}}
{{template "widget" .}}
{{- end}}`))
