package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so templates can stay linear.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) rawf(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

// attr writes ` name="value"` with value escaped.
func (w *writer) attr(name, value string) {
	w.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// pageTitle formats the document title the same way the head tags do.
func pageTitle(site Site, title string) string {
	if title == "" || title == site.Title {
		return site.Title
	}
	return title + " | " + site.Title
}

// socialIcon maps well-known icon names to a short text glyph.
func socialIcon(icon string) string {
	switch strings.ToLower(icon) {
	case "github":
		return "GH"
	case "x.com", "twitter":
		return "X"
	case "mastodon":
		return "M"
	case "discord":
		return "D"
	default:
		return strings.ToUpper(icon)
	}
}

// NavClass returns the CSS class of a sidebar link.
func NavClass(active bool) string {
	if active {
		return "nav-link active"
	}
	return "nav-link"
}
