package gofromts

import (
	"net/url"
	"path"
	"strings"
)

// slugFromPath maps a request path to a page slug: "/start/why/" and
// "/start/why" are "start/why", "/" is "".
func slugFromPath(p string) string {
	p = path.Clean("/" + p)
	return strings.ToLower(strings.Trim(p, "/"))
}

// isExternal reports whether link points to another site.
func isExternal(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.IsAbs() || strings.HasPrefix(link, "//")
}

// joinURL appends slash separated segments to base, keeping base's scheme
// and host and never producing a double slash.
func joinURL(base string, segments ...string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(path.Join(segments...), "/")
}
