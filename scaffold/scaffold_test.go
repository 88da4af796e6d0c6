package scaffold

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewData(t *testing.T) {
	d := NewData("github.com/user/my-docs")
	assert.Equal(t, "my-docs", d.ProjectName)
	assert.Equal(t, "My Docs", d.SiteName)
	assert.Equal(t, "https://my-docs.example.com", d.URL)
}

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	files, err := Generate(fs, "/site", NewData("site"))
	require.NoError(t, err)
	assert.Contains(t, files, "/site/docsite.yaml")
	assert.Contains(t, files, "/site/.env.example")
	assert.Contains(t, files, "/site/content/start/why.md")

	cfg, err := afero.ReadFile(fs, "/site/docsite.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(cfg), `title: "Site"`)
	assert.Contains(t, string(cfg), "- start/why")

	page, err := afero.ReadFile(fs, "/site/content/index.md")
	require.NoError(t, err)
	assert.Contains(t, string(page), "title: Site\n")
}

func TestGenerateExistingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/site", 0o755))
	_, err := Generate(fs, "/site", NewData("site"))
	assert.ErrorContains(t, err, "already exists")
}
