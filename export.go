package gofromts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Export writes the site as static files into dir, creating it if needed.
func (a *App) Export(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	return a.ExportTo(ctx, afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// ExportTo renders every page to <slug>/index.html on out together with
// 404.html, sitemap.xml, robots.txt, og.png, the stylesheet and the
// contents of the static directory under public/. It returns the number of
// pages written.
func (a *App) ExportTo(ctx context.Context, out afero.Fs) (int, error) {
	pages, err := a.Check()
	if err != nil {
		return 0, err
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		var buf bytes.Buffer
		if err := a.RenderPage(ctx, &buf, p, &url.URL{Path: p.Path()}); err != nil {
			return 0, err
		}
		if err := writeFile(out, path.Join(p.Path(), "index.html"), buf.Bytes()); err != nil {
			return 0, err
		}
	}

	var notFound bytes.Buffer
	if err := a.Views.NotFound(a.siteView()).Render(ctx, &notFound); err != nil {
		return 0, fmt.Errorf("render 404: %w", err)
	}

	var sitemap, robots bytes.Buffer
	if err := WriteSitemap(&sitemap, a.site, pages); err != nil {
		return 0, err
	}
	if err := WriteRobots(&robots, a.site); err != nil {
		return 0, err
	}

	og, err := afero.ReadFile(a.static, socialImagePath)
	if err != nil {
		if og, err = a.socialImage(); err != nil {
			return 0, err
		}
	}

	files := map[string][]byte{
		"/404.html":    notFound.Bytes(),
		"/sitemap.xml": sitemap.Bytes(),
		"/robots.txt":  robots.Bytes(),
		"/og.png":      og,
	}
	if css, err := EmbeddedAssets.ReadFile(stylesheetAsset); err == nil {
		files["/public/style.css"] = css
	}
	if a.site.Analytics.Enabled {
		if js, err := EmbeddedAssets.ReadFile(scriptAsset); err == nil {
			files["/js/script.js"] = js
		}
	}
	for name, data := range files {
		if err := writeFile(out, name, data); err != nil {
			return 0, err
		}
	}

	if err := copyStatic(a.static, out, "/public"); err != nil {
		return 0, fmt.Errorf("copy static files: %w", err)
	}
	a.Log.Infow("site exported", "pages", len(pages))
	return len(pages), nil
}

func writeFile(fs afero.Fs, name string, data []byte) error {
	if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, name, data, 0o644)
}

// copyStatic copies every file of src below prefix on dst. The embedded
// stylesheet wins over a static file of the same name. A missing static
// directory is not an error.
func copyStatic(src, dst afero.Fs, prefix string) error {
	err := afero.Walk(src, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		target := path.Join(prefix, p)
		if target == "/public/style.css" {
			return nil
		}
		in, err := src.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		if err := dst.MkdirAll(path.Dir(target), 0o755); err != nil {
			return err
		}
		f, err := dst.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, in); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
