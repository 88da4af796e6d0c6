package gofromts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/tmkn/gofromts/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// The component is rendered into a buffer first so a failing component
// never leaves a partial page behind.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// BuildRoute assembles the route data for entry served at u. The head
// starts with the default tags, followed by the configured head tags and
// the entry's own head tags; then every route middleware runs in order.
func (a *App) BuildRoute(entry Page, u *url.URL) (*RouteData, error) {
	index, err := a.Cache.PageIndex()
	if err != nil {
		return nil, err
	}
	nav, prev, next := BuildNav(a.site, index, entry.Slug)

	canonical, err := AbsoluteURL(a.site.URL, u.Path)
	if err != nil {
		canonical = u.Path
	}
	head := DefaultHead(a.site, entry, canonical)
	head = append(head, a.site.Head...)
	head = append(head, entry.Head...)

	rd := &RouteData{
		Entry:   entry,
		Head:    head,
		Nav:     nav,
		Prev:    prev,
		Next:    next,
		EditURL: EditURL(a.site, entry),
	}
	rc := &RouteContext{Site: a.site, URL: u, Route: rd}
	for _, mw := range a.routeMiddleware {
		if err := mw(rc); err != nil {
			return nil, err
		}
	}
	return rd, nil
}

// RenderPage renders entry as a complete HTML document to w. Nothing is
// written if building the route fails.
func (a *App) RenderPage(ctx context.Context, w io.Writer, entry Page, u *url.URL) error {
	rd, err := a.BuildRoute(entry, u)
	if err != nil {
		return fmt.Errorf("build route %s: %w", u.Path, err)
	}
	data := views.PageData{
		Site:        a.siteView(),
		Title:       rd.Entry.Title,
		Head:        HeadHTML(rd.Head),
		Content:     rd.Entry.HTML,
		Headings:    rd.Entry.Headings,
		Nav:         rd.Nav,
		Prev:        rd.Prev,
		Next:        rd.Next,
		EditURL:     rd.EditURL,
		LastUpdated: rd.Entry.LastUpdated,
	}
	var buf bytes.Buffer
	if err := a.Views.Page(data).Render(ctx, &buf); err != nil {
		return fmt.Errorf("render %s: %w", u.Path, err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
