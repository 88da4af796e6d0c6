package gofromts

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
)

func (a *App) handlePage(c echo.Context) error {
	slug := slugFromPath(c.Request().URL.Path)
	page, err := a.Cache.GetPage(slug)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	// One URL per page: "/Start/Why/" redirects to "/start/why/".
	if u := c.Request().URL; u.Path != page.Path() {
		target := &url.URL{Path: page.Path(), RawQuery: u.RawQuery}
		return c.Redirect(http.StatusMovedPermanently, target.String())
	}
	var buf bytes.Buffer
	if err := a.RenderPage(c.Request().Context(), &buf, page, c.Request().URL); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (a *App) handleSocialImage(c echo.Context) error {
	if data, err := afero.ReadFile(a.static, socialImagePath); err == nil {
		return c.Blob(http.StatusOK, "image/png", data)
	}
	data, err := a.socialImage()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func embeddedAsset(name, contentType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := EmbeddedAssets.ReadFile(name)
		if err != nil {
			return echo.ErrNotFound
		}
		return c.Blob(http.StatusOK, contentType, data)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		if rerr := RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.siteView())); rerr != nil {
			a.Log.Errorw("render not found page", "err", rerr)
		}
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Errorw("server error",
			"err", err,
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		if rerr := RenderStatus(c, code, a.Views.ServerError(a.siteView())); rerr != nil {
			a.Log.Errorw("render error page", "err", rerr)
		}
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// staticHandler serves files from fs without directory listings.
func staticHandler(fs afero.Fs) http.Handler {
	return http.FileServer(noListFs{afero.NewHttpFs(fs).Dir("/")})
}

// noListFs returns not found for directories without an index.html so
// http.FileServer never renders a listing.
type noListFs struct {
	http.FileSystem
}

func (nfs noListFs) Open(name string) (http.File, error) {
	f, err := nfs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	s, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if s.IsDir() {
		index, err := nfs.FileSystem.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, err
		}
		index.Close()
	}
	return f, nil
}
