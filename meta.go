package gofromts

import (
	"fmt"
	"net/url"

	"github.com/tmkn/gofromts/views"
)

const (
	socialImagePath   = "/og.png"
	socialImageWidth  = "1200"
	socialImageHeight = "630"
)

// RouteData is the request-local state a page is rendered from.
type RouteData struct {
	Entry   Page
	Head    []HeadTag
	Nav     []views.NavGroup
	Prev    *views.NavLink
	Next    *views.NavLink
	EditURL string
}

// RouteContext is passed to every RouteMiddleware while a page is built.
// Site is shared and must not be modified.
type RouteContext struct {
	Site  *SiteConfig
	URL   *url.URL
	Route *RouteData
}

// RouteMiddleware runs once per page render, after the default and configured
// head tags are in place and before the page is rendered. Returning an error
// aborts rendering of that page.
type RouteMiddleware func(rc *RouteContext) error

// SocialTags returns the Open Graph and Twitter card tags for entry served at
// urlPath. The order is fixed: image, image width, image height, Twitter
// image, title, description and page URL. The description falls back to the
// site description.
func SocialTags(site *SiteConfig, entry Page, urlPath string) ([]HeadTag, error) {
	if site == nil {
		return nil, ErrSiteURLMissing
	}
	pageURL, err := AbsoluteURL(site.URL, urlPath)
	if err != nil {
		return nil, err
	}
	image := site.SocialImage
	if image == "" {
		if image, err = AbsoluteURL(site.URL, socialImagePath); err != nil {
			return nil, err
		}
	}
	description := entry.Description
	if description == "" {
		description = site.Description
	}

	return []HeadTag{
		metaProperty("og:image", image),
		metaProperty("og:image:width", socialImageWidth),
		metaProperty("og:image:height", socialImageHeight),
		metaName("twitter:image", image),
		metaName("twitter:title", entry.Title),
		metaName("twitter:description", description),
		metaName("twitter:url", pageURL),
	}, nil
}

// SocialMeta appends SocialTags to the route head. It is not idempotent:
// running it twice on the same route appends every tag twice.
func SocialMeta(rc *RouteContext) error {
	tags, err := SocialTags(rc.Site, rc.Route.Entry, rc.URL.Path)
	if err != nil {
		return fmt.Errorf("social meta: %w", err)
	}
	rc.Route.Head = append(rc.Route.Head, tags...)
	return nil
}

// AbsoluteURL resolves the unescaped path p against the site base URL the
// way a browser resolves a link: an absolute path replaces the base path.
// Characters such as "?", "#" and "%" stay part of the path and are escaped.
func AbsoluteURL(base, p string) (string, error) {
	u, err := siteBase(base)
	if err != nil {
		return "", err
	}
	return u.ResolveReference(&url.URL{Path: p}).String(), nil
}
