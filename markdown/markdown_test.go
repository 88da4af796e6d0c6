package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, src string) (*goquery.Document, []Heading) {
	t.Helper()
	html, headings, err := New().Render([]byte(src))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc, headings
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		selector string
		text     string
	}{
		{"**bold**", "strong", "bold"},
		{"__bold__", "strong", "bold"},
		{"*italic*", "em", "italic"},
		{"`x := 1`", "code", "x := 1"},
		{"~~gone~~", "del", "gone"},
	}
	for _, tt := range tests {
		doc, _ := render(t, tt.input)
		assert.Equal(t, tt.text, doc.Find(tt.selector).Text(), tt.input)
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	doc, _ := render(t, "```go\nfunc main() {}\n```\n")
	code := doc.Find("pre code")
	require.Equal(t, 1, code.Length())
	assert.Equal(t, "language-go", code.AttrOr("class", ""))
	assert.Equal(t, "func main() {}\n", code.Text())
}

func TestRenderCodeBlockWithoutLanguage(t *testing.T) {
	doc, _ := render(t, "```\nplain\n```\n")
	code := doc.Find("pre code")
	_, hasClass := code.Attr("class")
	assert.False(t, hasClass)
	assert.Equal(t, "plain\n", code.Text())
}

func TestRenderHeadings(t *testing.T) {
	src := "# Title\n\n## Variables\n\ntext\n\n### Short `var` syntax\n\n#### Too deep\n\n## Constants\n"
	doc, headings := render(t, src)

	assert.Equal(t, []Heading{
		{Depth: 2, ID: "variables", Text: "Variables"},
		{Depth: 3, ID: "short-var-syntax", Text: "Short var syntax"},
		{Depth: 2, ID: "constants", Text: "Constants"},
	}, headings)
	assert.Equal(t, "Variables", doc.Find("h2#variables").Text())
}

func TestRenderTable(t *testing.T) {
	doc, _ := render(t, "| TS | Go |\n|----|----|\n| let | var |\n")
	assert.Equal(t, 2, doc.Find("table th").Length())
	assert.Equal(t, "var", doc.Find("table td").Last().Text())
}

func TestRenderTaskList(t *testing.T) {
	doc, _ := render(t, "- [x] done\n- [ ] todo\n")
	boxes := doc.Find("input[type=checkbox]")
	require.Equal(t, 2, boxes.Length())
	_, checked := boxes.First().Attr("checked")
	assert.True(t, checked)
}

func TestRenderLinks(t *testing.T) {
	doc, _ := render(t, "[next](/basic/if/) and [go](https://go.dev)")

	internal := doc.Find(`a[href="/basic/if/"]`)
	require.Equal(t, 1, internal.Length())
	_, hasTarget := internal.Attr("target")
	assert.False(t, hasTarget)

	external := doc.Find(`a[href="https://go.dev"]`)
	require.Equal(t, 1, external.Length())
	assert.Equal(t, "_blank", external.AttrOr("target", ""))
}

func TestRenderStripsUnsafeHTML(t *testing.T) {
	html, _, err := New().Render([]byte("<script>alert(1)</script>\n\n[x](javascript:alert(1))\n"))
	require.NoError(t, err)
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "javascript:")
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown("## Hello").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<h2 id="hello">Hello</h2>`)
}
