package gofromts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExportTo(t *testing.T) {
	content := afero.NewMemMapFs()
	writeContent(t, content, testPages)
	static := afero.NewMemMapFs()
	writeContent(t, static, map[string]string{
		"/images/logo.svg": "<svg/>",
		"/style.css":       "overridden",
	})

	cfg := testConfig()
	cfg.Analytics.Enabled = true
	app := New(cfg, WithLogger(zap.NewNop().Sugar()), WithContentFs(content), WithStaticFs(static))

	out := afero.NewMemMapFs()
	n, err := app.ExportTo(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, name := range []string{
		"/index.html",
		"/start/why/index.html",
		"/start/usage/index.html",
		"/404.html",
		"/sitemap.xml",
		"/robots.txt",
		"/og.png",
		"/js/script.js",
		"/public/images/logo.svg",
	} {
		ok, err := afero.Exists(out, name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}

	page, err := afero.ReadFile(out, "/start/why/index.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), `<meta content="https://example.com/start/why/" name="twitter:url">`)

	css, err := afero.ReadFile(out, "/public/style.css")
	require.NoError(t, err)
	assert.NotEqual(t, "overridden", string(css))
}

func TestExportFailsWithoutSiteURL(t *testing.T) {
	content := afero.NewMemMapFs()
	writeContent(t, content, testPages)
	cfg := testConfig()
	cfg.URL = ""
	app := New(cfg, WithLogger(zap.NewNop().Sugar()), WithContentFs(content))

	_, err := app.ExportTo(context.Background(), afero.NewMemMapFs())
	assert.ErrorIs(t, err, ErrSiteURLMissing)
}

func TestExportDir(t *testing.T) {
	content := afero.NewMemMapFs()
	writeContent(t, content, testPages)
	app := New(testConfig(),
		WithLogger(zap.NewNop().Sugar()),
		WithContentFs(content),
		WithStaticFs(afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(t.TempDir(), "missing"))),
	)

	dir := filepath.Join(t.TempDir(), "dist")
	_, err := app.Export(context.Background(), dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "start", "why", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "js", "script.js"))
	assert.True(t, os.IsNotExist(err))
}
