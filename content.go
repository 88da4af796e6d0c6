package gofromts

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/afero"
	"github.com/tmkn/gofromts/markdown"
	"github.com/tmkn/gofromts/views"
	"gopkg.in/yaml.v3"
)

// ErrPageNotFound is returned when no page exists for a slug.
var ErrPageNotFound = errors.New("page not found")

// ContentStore loads pages from markdown files on a filesystem.
type ContentStore struct {
	fs            afero.Fs
	md            *markdown.Renderer
	includeDrafts bool
}

// NewContentStore returns a store reading every .md and .markdown file below
// the root of fs. Drafts are only loaded when includeDrafts is set.
func NewContentStore(fs afero.Fs, includeDrafts bool) *ContentStore {
	return &ContentStore{fs: fs, md: markdown.New(), includeDrafts: includeDrafts}
}

// Load reads all pages sorted by slug. Every broken file is reported.
func (s *ContentStore) Load() ([]Page, error) {
	var (
		pages []Page
		errs  []error
		files = make(map[string]string)
	)
	err := afero.Walk(s.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isMarkdown(p) {
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(p), "/")
		data, err := afero.ReadFile(s.fs, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		page, err := s.parse(rel, data, info.ModTime())
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if page.Draft && !s.includeDrafts {
			return nil
		}
		if prev, dup := files[page.Slug]; dup {
			errs = append(errs, fmt.Errorf("%s: slug %q already used by %s", rel, page.Slug, prev))
			return nil
		}
		files[page.Slug] = rel
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages, nil
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// SlugFromFile maps a content-relative file path to its slug:
// "Start/Why.md" is "start/why", "basic/index.md" is "basic" and
// "index.md" is "".
func SlugFromFile(rel string) string {
	slug := strings.TrimSuffix(rel, path.Ext(rel))
	slug = strings.ToLower(slug)
	if slug == "index" {
		return ""
	}
	return strings.TrimSuffix(slug, "/index")
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	LastUpdated any    `yaml:"lastUpdated"`
	Draft       bool   `yaml:"draft"`
	Sidebar     struct {
		Label string `yaml:"label"`
	} `yaml:"sidebar"`
	Head []HeadTag `yaml:"head"`
}

func (s *ContentStore) parse(rel string, data []byte, modTime time.Time) (Page, error) {
	fm, body, err := splitFrontMatter(string(data))
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", rel, err)
	}

	var meta frontMatter
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return Page{}, fmt.Errorf("%s: parse frontmatter: %w", rel, err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return Page{}, fmt.Errorf("%s: title is required", rel)
	}
	for i, t := range meta.Head {
		if err := t.Validate(); err != nil {
			return Page{}, fmt.Errorf("%s: head[%d]: %w", rel, i, err)
		}
	}
	updated, err := parseLastUpdated(meta.LastUpdated, modTime)
	if err != nil {
		return Page{}, fmt.Errorf("%s: lastUpdated: %w", rel, err)
	}

	html, headings, err := s.md.Render([]byte(body))
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", rel, err)
	}

	return Page{
		Slug:         SlugFromFile(rel),
		Title:        meta.Title,
		Description:  meta.Description,
		LastUpdated:  updated,
		SidebarLabel: meta.Sidebar.Label,
		Draft:        meta.Draft,
		Head:         meta.Head,
		Body:         body,
		HTML:         html,
		Headings:     toHeadings(headings),
		File:         rel,
	}, nil
}

// splitFrontMatter separates the YAML block between the leading "---"
// fences from the markdown body.
func splitFrontMatter(s string) (string, string, error) {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", "", errors.New("missing frontmatter")
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n"), nil
		}
	}
	return "", "", errors.New("unterminated frontmatter")
}

// parseLastUpdated accepts a date in any common format, a YAML timestamp,
// or true for the file modification time. Dates without a zone are UTC.
func parseLastUpdated(v any, modTime time.Time) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case bool:
		if t {
			return modTime.UTC(), nil
		}
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return time.Time{}, nil
		}
		parsed, err := dateparse.ParseIn(t, time.UTC)
		if err != nil {
			return time.Time{}, err
		}
		return parsed.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported value %v", v)
	}
}

func toHeadings(hs []markdown.Heading) []views.Heading {
	out := make([]views.Heading, len(hs))
	for i, h := range hs {
		out[i] = views.Heading{Depth: h.Depth, Slug: h.ID, Text: h.Text}
	}
	return out
}
