package gofromts

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes the XML sitemap of pages.
func WriteSitemap(w io.Writer, site *SiteConfig, pages []Page) error {
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range pages {
		loc, err := AbsoluteURL(site.URL, p.Path())
		if err != nil {
			return err
		}
		u := sitemapURL{Loc: loc}
		if !p.LastUpdated.IsZero() {
			u.LastMod = p.LastUpdated.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}

// WriteRobots writes a robots.txt that allows everything and links the sitemap.
func WriteRobots(w io.Writer, site *SiteConfig) error {
	sitemap, err := AbsoluteURL(site.URL, "/sitemap.xml")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", sitemap)
	return err
}

func (a *App) handleSitemap(c echo.Context) error {
	pages, err := a.Cache.ListPages()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, a.site, pages); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

func (a *App) handleRobots(c echo.Context) error {
	var buf bytes.Buffer
	if err := WriteRobots(&buf, a.site); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}
