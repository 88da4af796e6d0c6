// Package markdown renders page bodies to sanitized HTML and extracts the
// headings used for the table of contents.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Heading is a section heading collected while rendering.
type Heading struct {
	Depth int
	ID    string
	Text  string
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	minDepth int
	maxDepth int
}

// New returns a Renderer with GitHub flavoured markdown enabled. Headings of
// depth 2 and 3 are collected for the table of contents.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithExtensions(
				extension.GFM,
			),
		),
		policy:   newPolicy(),
		minDepth: 2,
		maxDepth: 3,
	}
}

var (
	reLanguage = regexp.MustCompile(`^language-[\w+#-]+$`)
	reCheckbox = regexp.MustCompile(`^checkbox$`)
	reAlign    = regexp.MustCompile(`^(left|right|center)$`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(reLanguage).OnElements("code")
	p.AllowAttrs("type").Matching(reCheckbox).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("align").Matching(reAlign).OnElements("th", "td")
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center").OnElements("th", "td")
	return p
}

// Render converts src to sanitized HTML and returns the collected headings
// in document order.
func (r *Renderer) Render(src []byte) (string, []Heading, error) {
	doc := r.md.Parser().Parse(text.NewReader(src))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		if h.Level >= r.minDepth && h.Level <= r.maxDepth {
			headings = append(headings, Heading{
				Depth: h.Level,
				ID:    headingID(h),
				Text:  plainText(h, src),
			})
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("walk markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", nil, fmt.Errorf("render markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), headings, nil
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// plainText concatenates the text segments below n, dropping markup.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// HTML wraps already rendered, sanitized HTML as a component.
func HTML(html string) templ.Component {
	return templ.Raw(html)
}

var defaultRenderer = New()

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, _, err := defaultRenderer.Render([]byte(md))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}
