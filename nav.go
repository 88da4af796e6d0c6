package gofromts

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/tmkn/gofromts/views"
)

// ErrSidebarSlugMissing is returned when the sidebar references a slug
// without a content entry.
var ErrSidebarSlugMissing = errors.New("sidebar references missing pages")

// BuildNav resolves the configured sidebar against the loaded pages. The
// item for current is marked active and its neighbours in sidebar order
// are returned as prev and next. Slug items without a page are skipped.
func BuildNav(site *SiteConfig, pages map[string]Page, current string) (groups []views.NavGroup, prev, next *views.NavLink) {
	var order []views.NavLink
	pos := -1

	for _, g := range site.Sidebar {
		group := views.NavGroup{Label: g.Label}
		for _, it := range g.Items {
			if it.Link != "" {
				group.Items = append(group.Items, views.NavLink{
					Label:    it.Label,
					Href:     it.Link,
					Active:   !isExternal(it.Link) && slugFromPath(it.Link) == current,
					External: isExternal(it.Link),
				})
				continue
			}
			page, ok := pages[it.Slug]
			if !ok {
				continue
			}
			link := views.NavLink{
				Label:  navLabel(it, page),
				Href:   page.Path(),
				Active: page.Slug == current,
			}
			if link.Active {
				pos = len(order)
			}
			order = append(order, link)
			group.Items = append(group.Items, link)
		}
		groups = append(groups, group)
	}

	if pos > 0 {
		p := order[pos-1]
		prev = &p
	}
	if pos >= 0 && pos < len(order)-1 {
		n := order[pos+1]
		next = &n
	}
	return groups, prev, next
}

// navLabel prefers the item label, then the page's sidebar label, then its title.
func navLabel(it SidebarItem, page Page) string {
	return lo.CoalesceOrEmpty(it.Label, page.SidebarLabel, page.Title)
}

// CheckSidebar reports every sidebar slug that has no content entry.
func CheckSidebar(site *SiteConfig, pages map[string]Page) error {
	var missing []string
	for _, g := range site.Sidebar {
		for _, it := range g.Items {
			if it.Slug == "" {
				continue
			}
			if _, ok := pages[it.Slug]; !ok {
				missing = append(missing, fmt.Sprintf("%q (%s)", it.Slug, g.Label))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSidebarSlugMissing, strings.Join(missing, ", "))
}

// EditURL returns the link to the page source, or "" when no edit link base
// is configured.
func EditURL(site *SiteConfig, page Page) string {
	if site.EditLink.BaseURL == "" || page.File == "" {
		return ""
	}
	dir := filepath.ToSlash(site.ContentDir)
	if filepath.IsAbs(site.ContentDir) {
		dir = ""
	}
	return joinURL(site.EditLink.BaseURL, path.Join(dir, page.File))
}
