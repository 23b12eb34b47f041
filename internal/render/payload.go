package render

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
)

// PayloadPrinter pretty-prints raw export payloads, highlighting them when
// the output is a color terminal.
type PayloadPrinter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter // nil when color is disabled
}

// NewPayloadPrinter picks a chroma formatter from the color profile of out.
func NewPayloadPrinter(out io.Writer) *PayloadPrinter {
	p := &PayloadPrinter{
		lexer: chroma.Coalesce(lexers.Get("json")),
		style: styles.Get("dracula"),
	}
	if name := chromaFormatter(colorprofile.Detect(out, os.Environ())); name != "" {
		p.formatter = formatters.Get(name)
	}
	return p
}

// Print writes payload to w. Valid JSON is indented and highlighted; anything
// else is written verbatim so broken exports can still be inspected.
func (p *PayloadPrinter) Print(w io.Writer, payload []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(payload), "", "  "); err != nil {
		_, werr := w.Write(payload)
		return werr
	}
	buf.WriteByte('\n')

	if p.formatter == nil {
		_, err := buf.WriteTo(w)
		return err
	}

	iterator, err := p.lexer.Tokenise(nil, buf.String())
	if err != nil {
		_, werr := buf.WriteTo(w)
		return werr
	}
	return p.formatter.Format(w, p.style, iterator)
}

// chromaFormatter maps colorprofile profiles to chroma terminal formatter
// names. An empty name means no color.
func chromaFormatter(profile colorprofile.Profile) string {
	switch profile {
	case colorprofile.TrueColor:
		return "terminal16m"
	case colorprofile.ANSI256:
		return "terminal256"
	case colorprofile.ANSI:
		return "terminal16"
	default:
		return ""
	}
}
