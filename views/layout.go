// Package views holds the default templ components used to render the site.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const stylesheet = `<link rel="stylesheet" href="/public/style.css">`

// Page renders a documentation page with sidebar, table of contents and footer.
func Page(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		w.raw(d.Head)
		w.raw(stylesheet)
		w.raw("\n</head>\n<body>\n")
		header(w, d.Site)

		w.raw(`<div class="layout">`)
		sidebar(w, d.Nav)

		w.raw(`<main class="content"><article>`)
		w.raw("<h1>")
		w.text(d.Title)
		w.raw("</h1>")
		w.raw(d.Content)
		w.raw("</article>")
		footer(w, d)
		w.raw("</main>")

		toc(w, d.Headings)
		w.raw("</div>\n</body>\n</html>\n")
		return w.err
	})
}

func header(w *writer, site Site) {
	w.raw(`<header class="header"><a class="site-title" href="/">`)
	w.text(site.Title)
	w.raw(`</a><nav class="social">`)
	for _, s := range site.Social {
		w.raw("<a")
		w.attr("href", s.Href)
		w.attr("aria-label", s.Label)
		w.attr("title", s.Label)
		w.raw(` rel="me">`)
		w.text(socialIcon(s.Icon))
		w.raw("</a>")
	}
	w.raw("</nav></header>")
}

func sidebar(w *writer, groups []NavGroup) {
	w.raw(`<aside class="sidebar"><nav aria-label="Main">`)
	for _, g := range groups {
		w.raw("<details open")
		if g.HasActive() {
			w.raw(` class="current"`)
		}
		w.raw("><summary>")
		w.text(g.Label)
		w.raw("</summary><ul>")
		for _, it := range g.Items {
			w.raw("<li><a")
			w.attr("href", it.Href)
			w.attr("class", NavClass(it.Active))
			if it.Active {
				w.raw(` aria-current="page"`)
			}
			if it.External {
				w.raw(` rel="noopener" target="_blank"`)
			}
			w.raw(">")
			w.text(it.Label)
			w.raw("</a></li>")
		}
		w.raw("</ul></details>")
	}
	w.raw("</nav></aside>")
}

func footer(w *writer, d PageData) {
	w.raw(`<footer class="page-footer">`)
	if d.EditURL != "" || !d.LastUpdated.IsZero() {
		w.raw(`<div class="meta">`)
		if d.EditURL != "" {
			w.raw(`<a class="edit-link"`)
			w.attr("href", d.EditURL)
			w.raw(">Edit page</a>")
		}
		if !d.LastUpdated.IsZero() {
			w.raw(`<p class="last-updated">Last updated: <time`)
			w.attr("datetime", d.LastUpdated.Format("2006-01-02"))
			w.raw(">")
			w.text(d.LastUpdated.Format("Jan 2, 2006"))
			w.raw("</time></p>")
		}
		w.raw("</div>")
	}
	if d.Prev != nil || d.Next != nil {
		w.raw(`<nav class="pagination" aria-label="Pagination">`)
		if d.Prev != nil {
			w.raw(`<a rel="prev"`)
			w.attr("href", d.Prev.Href)
			w.raw("><span>Previous</span> ")
			w.text(d.Prev.Label)
			w.raw("</a>")
		}
		if d.Next != nil {
			w.raw(`<a rel="next"`)
			w.attr("href", d.Next.Href)
			w.raw("><span>Next</span> ")
			w.text(d.Next.Label)
			w.raw("</a>")
		}
		w.raw("</nav>")
	}
	w.raw("</footer>")
}

func toc(w *writer, headings []Heading) {
	if len(headings) == 0 {
		return
	}
	w.raw(`<aside class="toc"><h2>On this page</h2><ul>`)
	for _, h := range headings {
		w.rawf(`<li class="depth-%d"><a`, h.Depth)
		w.attr("href", "#"+h.Slug)
		w.raw(">")
		w.text(h.Text)
		w.raw("</a></li>")
	}
	w.raw("</ul></aside>")
}

// simplePage renders a bare page used for errors and the admin area.
func simplePage(site Site, title string, body func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		w.raw(`<meta charset="utf-8">` + "\n")
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
		w.raw(`<meta name="robots" content="noindex">` + "\n")
		w.raw("<title>")
		w.text(pageTitle(site, title))
		w.raw("</title>\n")
		w.raw(stylesheet)
		w.raw("\n</head>\n<body>\n")
		header(w, site)
		w.raw(`<main class="content narrow">`)
		body(w)
		w.raw("</main>\n</body>\n</html>\n")
		return w.err
	})
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return simplePage(site, "Not found", func(w *writer) {
		w.raw("<h1>Page not found</h1><p>The page you are looking for does not exist.</p>")
		w.raw(`<p><a href="/">Back to the start</a></p>`)
	})
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return simplePage(site, "Error", func(w *writer) {
		w.raw("<h1>Something went wrong</h1><p>Please try again later.</p>")
	})
}
