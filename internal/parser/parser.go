// Package parser extracts searchable text and resource references from note cells.
package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/quiverlib/internal/quiver"
)

// Result holds the output of parsing the cells of one note.
type Result struct {
	Body      string   // plain text of all cells, one block per cell
	Resources []string // resource files referenced by the cells, in order of first use
}

// Parse builds the plain-text body of cells and collects references to files
// inside resourcesDir. Cells are expected to be sanitized already.
func Parse(resourcesDir string, cells []quiver.Cell) *Result {
	blocks := make([]string, 0, len(cells))
	for _, c := range cells {
		if text := cellText(c); text != "" {
			blocks = append(blocks, text)
		}
	}
	return &Result{
		Body:      strings.Join(blocks, "\n\n"),
		Resources: extractResources(resourcesDir, cells),
	}
}

// cellText returns the searchable text of a single cell. Text cells hold
// HTML and are flattened; every other kind is kept verbatim.
func cellText(c quiver.Cell) string {
	if c.Type != quiver.CellText {
		return strings.TrimSpace(c.Data)
	}
	return StripHTML(c.Data)
}

// StripHTML flattens the HTML in s into plain text. Script and style
// elements and comments are dropped, block-level elements and <br> end a
// line, and runs of whitespace collapse to one space.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	writeText(doc, &b)
	return normalizeLines(b.String())
}

// writeText appends the visible text below n to b.
func writeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return
		}
		if tag == "br" {
			b.WriteByte('\n')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b)
	}
	if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) {
		b.WriteByte('\n')
	}
}

func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "head", "iframe", "object", "svg":
		return true
	}
	return false
}

func isBlockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "article", "header", "footer", "blockquote", "pre",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "tr", "hr":
		return true
	}
	return false
}

// normalizeLines collapses whitespace inside each line, trims the lines and
// keeps at most one blank line in a row.
func normalizeLines(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// extractResources returns deduplicated paths below resourcesDir that appear
// in cell data.
func extractResources(resourcesDir string, cells []quiver.Cell) []string {
	if resourcesDir == "" {
		return nil
	}
	re := regexp.MustCompile(regexp.QuoteMeta(resourcesDir) + `/[^"'\s)<>]+`)

	seen := make(map[string]struct{})
	var out []string
	for _, c := range cells {
		for _, m := range re.FindAllString(c.Data, -1) {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
