package gofromts

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheTTL(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeContent(t, fs, map[string]string{"/a.md": "---\ntitle: A\n---\n"})

	cache := NewPageCache(NewContentStore(fs, false), time.Hour)
	pages, err := cache.ListPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	writeContent(t, fs, map[string]string{"/b.md": "---\ntitle: B\n---\n"})
	pages, err = cache.ListPages()
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	cache.Invalidate()
	pages, err = cache.ListPages()
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestPageCacheZeroTTLReloads(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeContent(t, fs, map[string]string{"/a.md": "---\ntitle: A\n---\n"})

	cache := NewPageCache(NewContentStore(fs, false), 0)
	_, err := cache.GetPage("b")
	assert.ErrorIs(t, err, ErrPageNotFound)

	writeContent(t, fs, map[string]string{"/b.md": "---\ntitle: B\n---\n"})
	page, err := cache.GetPage("b")
	require.NoError(t, err)
	assert.Equal(t, "B", page.Title)

	index, err := cache.PageIndex()
	require.NoError(t, err)
	assert.Contains(t, index, "a")
	assert.Contains(t, index, "b")
}

func TestPageCacheLoadError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeContent(t, fs, map[string]string{"/a.md": "broken"})

	cache := NewPageCache(NewContentStore(fs, false), time.Hour)
	_, err := cache.ListPages()
	assert.Error(t, err)
}
