package anchor

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Heading is one section heading of a rendered document.
type Heading struct {
	Level     int    // 1 for "#", 2 for "##", ...
	Text      string // Rendered heading text (inline markup stripped)
	Slug      string // Slugify(Text)
	Duplicate bool   // Slug already used by an earlier heading
}

var outlineParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// Outline parses Markdown content and returns its headings in document order.
// Unlike CollectHeaders it understands the full Markdown grammar, so headings
// inside fenced code blocks are not reported and setext headings are.
func Outline(content []byte) []Heading {
	if len(content) == 0 {
		return nil
	}

	doc := outlineParser.Parser().Parse(text.NewReader(content))

	var headings []Heading
	seen := make(map[string]bool)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := extractTextFromNode(heading, content)
		slug := Slugify(headingText)
		headings = append(headings, Heading{
			Level:     heading.Level,
			Text:      headingText,
			Slug:      slug,
			Duplicate: seen[slug],
		})
		seen[slug] = true

		return ast.WalkSkipChildren, nil
	})

	return headings
}

// extractTextFromNode extracts text content from a node and its children.
func extractTextFromNode(n ast.Node, content []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			textBuilder.Write(v.Segment.Value(content))
			if v.SoftLineBreak() {
				textBuilder.WriteByte(' ')
			}
		case *ast.String:
			textBuilder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(textBuilder.String())
}
