package gofromts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHead(t *testing.T) {
	tags := []HeadTag{
		{Tag: "script", Attrs: map[string]any{"src": "/js/script.js", "data-domain": "gofromts.tmkn.dev", "defer": true, "async": false}},
		{Tag: "meta", Attrs: map[string]any{"name": "description", "content": `"quoted" & <b>`}},
		{Tag: "title", Content: "A < B"},
		{Tag: "style", Content: "a > b { color: red }"},
	}
	var b strings.Builder
	require.NoError(t, RenderHead(&b, tags))

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	assert.Equal(t, []string{
		`<script data-domain="gofromts.tmkn.dev" defer src="/js/script.js"></script>`,
		`<meta content="&#34;quoted&#34; &amp; &lt;b&gt;" name="description">`,
		`<title>A &lt; B</title>`,
		`<style>a > b { color: red }</style>`,
	}, lines)
}

func TestHeadTagValidate(t *testing.T) {
	assert.NoError(t, HeadTag{Tag: "link", Attrs: map[string]any{"rel": "icon", "hidden": true}}.Validate())
	assert.ErrorContains(t, HeadTag{Tag: " "}.Validate(), "tag name")
	assert.ErrorContains(t, HeadTag{Tag: "meta", Attrs: map[string]any{"width": 1200}}.Validate(), `"width" must be a string or boolean`)
}

func TestHeadTagAttr(t *testing.T) {
	tag := HeadTag{Tag: "script", Attrs: map[string]any{"src": "/a.js", "defer": true, "async": false}}
	assert.Equal(t, "/a.js", tag.Attr("src"))
	assert.Equal(t, "defer", tag.Attr("defer"))
	assert.Empty(t, tag.Attr("async"))
	assert.Empty(t, tag.Attr("missing"))
}

func TestDefaultHead(t *testing.T) {
	site := testSite()
	head := DefaultHead(site, Page{Title: "Why"}, "https://gofromts.tmkn.dev/start/why/")

	html := HeadHTML(head)
	assert.Contains(t, html, "<title>Why | Go from TS</title>")
	assert.Contains(t, html, `<link href="https://gofromts.tmkn.dev/start/why/" rel="canonical">`)
	assert.Contains(t, html, `<meta content="`+DefaultDescription+`" name="description">`)
	assert.Contains(t, html, `<meta content="summary_large_image" name="twitter:card">`)

	home := DefaultHead(site, Page{Title: "Go from TS", Description: "Home"}, "https://gofromts.tmkn.dev/")
	assert.Contains(t, HeadHTML(home), "<title>Go from TS</title>")
	assert.Contains(t, HeadHTML(home), `<meta content="Home" property="og:description">`)
}
