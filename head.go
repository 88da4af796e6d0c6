package gofromts

import (
	"errors"
	"fmt"
	"html"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// HeadTag is a single element rendered into a page's <head>.
// Attribute values are strings or booleans; true renders a bare attribute
// and false omits it. Names from the config file arrive lowercased.
type HeadTag struct {
	Tag     string         `mapstructure:"tag" yaml:"tag"`
	Attrs   map[string]any `mapstructure:"attrs" yaml:"attrs"`
	Content string         `mapstructure:"content" yaml:"content"`
}

// Attr returns the string value of attribute name, or "" if unset.
func (t HeadTag) Attr(name string) string {
	switch v := t.Attrs[name].(type) {
	case string:
		return v
	case bool:
		if v {
			return name
		}
	}
	return ""
}

// Validate checks the tag name and that every attribute is a string or bool.
func (t HeadTag) Validate() error {
	if strings.TrimSpace(t.Tag) == "" {
		return errors.New("tag name is required")
	}
	for name, v := range t.Attrs {
		switch v.(type) {
		case string, bool:
		default:
			return fmt.Errorf("<%s> attribute %q must be a string or boolean, got %T", t.Tag, name, v)
		}
	}
	return nil
}

var voidElements = map[string]bool{
	"base": true,
	"link": true,
	"meta": true,
}

// RenderHead writes tags as HTML, one element per line, in order.
func RenderHead(w io.Writer, tags []HeadTag) error {
	var b strings.Builder
	for _, t := range tags {
		writeTag(&b, t)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// HeadHTML is RenderHead into a string.
func HeadHTML(tags []HeadTag) string {
	var b strings.Builder
	_ = RenderHead(&b, tags)
	return b.String()
}

func writeTag(b *strings.Builder, t HeadTag) {
	name := strings.ToLower(strings.TrimSpace(t.Tag))
	b.WriteString("<")
	b.WriteString(name)

	keys := lo.Keys(t.Attrs)
	slices.Sort(keys)
	for _, k := range keys {
		switch v := t.Attrs[k].(type) {
		case bool:
			if v {
				b.WriteString(" ")
				b.WriteString(html.EscapeString(k))
			}
		default:
			fmt.Fprintf(b, ` %s="%s"`, html.EscapeString(k), html.EscapeString(fmt.Sprint(v)))
		}
	}
	b.WriteString(">")
	if voidElements[name] {
		return
	}
	if name == "script" || name == "style" {
		b.WriteString(t.Content)
	} else {
		b.WriteString(html.EscapeString(t.Content))
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func metaName(name, content string) HeadTag {
	return HeadTag{Tag: "meta", Attrs: map[string]any{"name": name, "content": content}}
}

func metaProperty(property, content string) HeadTag {
	return HeadTag{Tag: "meta", Attrs: map[string]any{"property": property, "content": content}}
}

func linkTag(rel, href string) HeadTag {
	return HeadTag{Tag: "link", Attrs: map[string]any{"rel": rel, "href": href}}
}

// DefaultHead returns the tags every page starts with, before the configured
// head tags and route middleware are applied.
func DefaultHead(site *SiteConfig, entry Page, canonical string) []HeadTag {
	description := entry.Description
	if description == "" {
		description = site.Description
	}
	title := site.Title
	if entry.Title != "" && entry.Title != site.Title {
		title = entry.Title + " | " + site.Title
	}
	return []HeadTag{
		{Tag: "meta", Attrs: map[string]any{"charset": "utf-8"}},
		metaName("viewport", "width=device-width, initial-scale=1"),
		{Tag: "title", Content: title},
		linkTag("canonical", canonical),
		metaName("description", description),
		metaProperty("og:title", entry.Title),
		metaProperty("og:type", "article"),
		metaProperty("og:url", canonical),
		metaProperty("og:site_name", site.Title),
		metaProperty("og:description", description),
		metaName("twitter:card", "summary_large_image"),
		linkTag("sitemap", "/sitemap.xml"),
	}
}
