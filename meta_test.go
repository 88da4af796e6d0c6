package gofromts

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite() *SiteConfig {
	return &SiteConfig{
		Title:       "Go from TS",
		Description: DefaultDescription,
		URL:         "https://gofromts.tmkn.dev",
	}
}

func tagKey(t HeadTag) string {
	if p := t.Attr("property"); p != "" {
		return p
	}
	return t.Attr("name")
}

func TestSocialTags(t *testing.T) {
	site := testSite()
	entry := Page{Slug: "start/why", Title: "Why", Description: "Why Go"}

	tags, err := SocialTags(site, entry, "/start/why/")
	require.NoError(t, err)

	want := []struct{ key, content string }{
		{"og:image", "https://gofromts.tmkn.dev/og.png"},
		{"og:image:width", "1200"},
		{"og:image:height", "630"},
		{"twitter:image", "https://gofromts.tmkn.dev/og.png"},
		{"twitter:title", "Why"},
		{"twitter:description", "Why Go"},
		{"twitter:url", "https://gofromts.tmkn.dev/start/why/"},
	}
	require.Len(t, tags, len(want))
	for i, w := range want {
		assert.Equal(t, "meta", tags[i].Tag)
		assert.Equal(t, w.key, tagKey(tags[i]), "tag %d", i)
		assert.Equal(t, w.content, tags[i].Attr("content"), "tag %d", i)
	}
}

func TestSocialTagsDescriptionFallback(t *testing.T) {
	tags, err := SocialTags(testSite(), Page{Title: "Variables"}, "/basic/variables/")
	require.NoError(t, err)
	assert.Equal(t, DefaultDescription, tags[5].Attr("content"))
}

func TestSocialTagsVerbatimDescription(t *testing.T) {
	entry := Page{Title: " Why ", Description: "  Go & <TS> \"types\"  "}
	tags, err := SocialTags(testSite(), entry, "/start/why/")
	require.NoError(t, err)
	assert.Equal(t, " Why ", tags[4].Attr("content"))
	assert.Equal(t, "  Go & <TS> \"types\"  ", tags[5].Attr("content"))
}

func TestSocialTagsEscapedPath(t *testing.T) {
	tests := map[string]string{
		"/faq/what?/": "https://gofromts.tmkn.dev/faq/what%3F/",
		"/100%/":      "https://gofromts.tmkn.dev/100%25/",
		"/a#b/":       "https://gofromts.tmkn.dev/a%23b/",
		"/start/why/": "https://gofromts.tmkn.dev/start/why/",
		"/über/uns/":  "https://gofromts.tmkn.dev/%C3%BCber/uns/",
	}
	for path, want := range tests {
		tags, err := SocialTags(testSite(), Page{Title: "x"}, path)
		require.NoError(t, err, path)
		assert.Equal(t, want, tags[6].Attr("content"), path)
	}
}

func TestSocialTagsConfiguredImage(t *testing.T) {
	site := testSite()
	site.SocialImage = "https://cdn.example.com/card.png"
	tags, err := SocialTags(site, Page{Title: "Home"}, "/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/card.png", tags[0].Attr("content"))
	assert.Equal(t, "https://gofromts.tmkn.dev/", tags[6].Attr("content"))
}

func TestSocialTagsSiteURLMissing(t *testing.T) {
	for _, raw := range []string{"", "   ", "/relative", "gofromts.tmkn.dev"} {
		site := testSite()
		site.URL = raw
		_, err := SocialTags(site, Page{Title: "Why"}, "/start/why/")
		assert.ErrorIs(t, err, ErrSiteURLMissing, "url %q", raw)
	}
	_, err := SocialTags(nil, Page{}, "/")
	assert.ErrorIs(t, err, ErrSiteURLMissing)
}

func TestSocialMetaAppends(t *testing.T) {
	rc := &RouteContext{
		Site:  testSite(),
		URL:   &url.URL{Path: "/start/why/"},
		Route: &RouteData{Entry: Page{Title: "Why"}, Head: []HeadTag{{Tag: "title", Content: "Why"}}},
	}
	require.NoError(t, SocialMeta(rc))
	require.Len(t, rc.Route.Head, 8)
	assert.Equal(t, "title", rc.Route.Head[0].Tag)
	assert.Equal(t, "og:image", tagKey(rc.Route.Head[1]))

	require.NoError(t, SocialMeta(rc))
	assert.Len(t, rc.Route.Head, 15)
}

func TestSocialMetaError(t *testing.T) {
	site := testSite()
	site.URL = ""
	rc := &RouteContext{Site: site, URL: &url.URL{Path: "/"}, Route: &RouteData{}}
	err := SocialMeta(rc)
	assert.ErrorIs(t, err, ErrSiteURLMissing)
	assert.Empty(t, rc.Route.Head)
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://example.com", "/og.png", "https://example.com/og.png"},
		{"https://example.com/", "/start/why/", "https://example.com/start/why/"},
		{"https://example.com/docs/", "/og.png", "https://example.com/og.png"},
		{"https://example.com/docs/", "og.png", "https://example.com/docs/og.png"},
	}
	for _, tt := range tests {
		got, err := AbsoluteURL(tt.base, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
