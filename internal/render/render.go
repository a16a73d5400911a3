// Package render turns loaded notes into standalone HTML pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/starford/quiverlib/internal/quiver"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// StyleExists reports whether name is a registered chroma style.
func StyleExists(name string) bool {
	return slices.Contains(styles.Names(), name)
}

// Renderer converts notes into HTML pages.
type Renderer struct {
	markdown  goldmark.Markdown
	style     *chroma.Style
	formatter *chromahtml.Formatter
	page      *template.Template
}

type pageData struct {
	Title    string
	Tags     []string
	Created  string
	Updated  string
	Notebook string
	Cells    []template.HTML
}

// New returns a Renderer highlighting code with the named chroma style.
func New(style string) (*Renderer, error) {
	if style == "" {
		style = DefaultStyle
	}
	if !StyleExists(style) {
		return nil, fmt.Errorf("render: unknown style %q", style)
	}
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithUnsafe(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.TabWidth(4)),
		page:      template.Must(template.New("note").Parse(pageTemplate)),
	}, nil
}

// Note renders n as a complete HTML document. notebook is shown in the header.
func (r *Renderer) Note(notebook string, n *quiver.Note) ([]byte, error) {
	cells, err := n.Content()
	if err != nil {
		return nil, err
	}

	data := pageData{
		Title:    n.Title(),
		Tags:     n.Tags(),
		Notebook: notebook,
		Created:  formatEpoch(n.CreatedTime),
		Updated:  formatEpoch(n.UpdatedTime),
		Cells:    make([]template.HTML, 0, len(cells)),
	}
	for i, c := range cells {
		out, err := r.Cell(c)
		if err != nil {
			return nil, fmt.Errorf("render: note %s cell %d: %w", n.ID(), i, err)
		}
		data.Cells = append(data.Cells, out)
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render: note %s: %w", n.ID(), err)
	}
	return buf.Bytes(), nil
}

// Cell renders a single cell as an HTML fragment.
func (r *Renderer) Cell(c quiver.Cell) (template.HTML, error) {
	switch c.Type {
	case quiver.CellText:
		// Text cells are stored as HTML by Quiver.
		return wrap(c.Type, c.Data), nil
	case quiver.CellMarkdown:
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(c.Data), &buf); err != nil {
			return "", fmt.Errorf("markdown: %w", err)
		}
		return wrap(c.Type, buf.String()), nil
	case quiver.CellCode:
		return r.code(c)
	default:
		// latex, diagram and unknown kinds are shown as escaped source.
		return preformatted(c), nil
	}
}

func (r *Renderer) code(c quiver.Cell) (template.HTML, error) {
	lexer := lexers.Get(c.Language)
	if lexer == nil {
		lexer = lexers.Analyse(c.Data)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, c.Data)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", c.Language, err)
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, it); err != nil {
		return "", fmt.Errorf("highlight %s: %w", c.Language, err)
	}
	return wrap(c.Type, buf.String()), nil
}

func preformatted(c quiver.Cell) template.HTML {
	class := "cell cell-" + c.Type
	if c.DiagramType != "" {
		class += " diagram-" + c.DiagramType
	}
	return template.HTML(fmt.Sprintf(`<pre class="%s">%s</pre>`,
		template.HTMLEscapeString(class), template.HTMLEscapeString(c.Data)))
}

func wrap(kind, inner string) template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="cell cell-`)
	b.WriteString(template.HTMLEscapeString(kind))
	b.WriteString(`">`)
	b.WriteString(inner)
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}

func formatEpoch(parse func() (time.Time, error)) string {
	t, err := parse()
	if err != nil {
		return ""
	}
	return t.Format(time.DateTime)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
    .meta { color: #64748b; font-size: 0.9rem; }
    .tag { background: #e2e8f0; border-radius: 4px; padding: 0 0.4rem; margin-right: 0.3rem; }
    .cell { margin: 1.25rem 0; }
    pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; background: #f8fafc; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">{{if .Notebook}}{{.Notebook}}{{end}}{{if .Created}} &middot; created {{.Created}}{{end}}{{if .Updated}} &middot; updated {{.Updated}}{{end}}</p>
    {{if .Tags}}<p>{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</p>{{end}}
  </header>
  <article>
{{range .Cells}}    {{.}}
{{end}}  </article>
</body>
</html>
`
