package gofromts

import (
	"time"

	"github.com/tmkn/gofromts/views"
)

// Page is a content entry loaded from a markdown file. Pages are shared
// between requests and must be treated as read-only.
type Page struct {
	Slug         string // "" for the index page
	Title        string
	Description  string // empty means absent
	LastUpdated  time.Time
	SidebarLabel string
	Draft        bool
	Head         []HeadTag
	Body         string // markdown source without frontmatter
	HTML         string // sanitized
	Headings     []views.Heading
	File         string // path relative to the content directory
}

// Path returns the URL path the page is served at.
func (p Page) Path() string {
	if p.Slug == "" {
		return "/"
	}
	return "/" + p.Slug + "/"
}
