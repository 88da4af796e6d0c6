// Package scaffold creates the files of a new documentation site from
// embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/spf13/afero"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	URL         string
}

// NewData derives the template variables from a project name such as
// "mydocs" or "github.com/user/my-docs".
func NewData(name string) Data {
	dir := path.Base(strings.TrimRight(name, "/"))
	return Data{
		ProjectName: dir,
		SiteName:    toTitle(dir),
		URL:         "https://" + dir + ".example.com",
	}
}

// Generate renders every template into dir on fsys and returns the created
// file paths. It fails if dir already exists.
func Generate(fsys afero.Fs, dir string, data Data) ([]string, error) {
	if ok, _ := afero.Exists(fsys, dir); ok {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}

	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		out := path.Join(dir, strings.TrimSuffix(rel, ".tmpl"))
		if path.Base(out) == "dotenv" {
			out = path.Join(path.Dir(out), ".env.example")
		}

		if d.IsDir() {
			return fsys.MkdirAll(out, 0o755)
		}

		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Delims("[[", "]]").Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}

		f, err := fsys.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		created = append(created, out)
		return nil
	})
	return created, err
}

// toTitle converts a kebab or snake case name to title case.
func toTitle(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
