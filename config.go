package gofromts

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultDescription is the site description used when the config omits one.
// Pages without a description of their own fall back to the site description.
const DefaultDescription = "Use your TypeScript knowledge to learn Go"

// ErrSiteURLMissing is returned when the site base URL is absent or not absolute.
var ErrSiteURLMissing = errors.New("site URL is not configured")

// SiteConfig holds all configuration for a gofromts site. It is built once at
// startup and never mutated afterwards; components receive it by pointer.
type SiteConfig struct {
	Title       string         `mapstructure:"title"`
	Description string         `mapstructure:"description"` // fallback for pages without one
	URL         string         `mapstructure:"url"`         // canonical site URL, required
	Social      []SocialLink   `mapstructure:"social"`
	Sidebar     []SidebarGroup `mapstructure:"sidebar"`
	EditLink    EditLink       `mapstructure:"editLink"`
	Head        []HeadTag      `mapstructure:"head"`        // injected on every page
	SocialImage string         `mapstructure:"socialImage"` // default <URL>/og.png

	Addr                  string        `mapstructure:"addr"`       // default ":3000"
	ContentDir            string        `mapstructure:"contentDir"` // default "content"
	StaticDir             string        `mapstructure:"staticDir"`  // default "public"
	Development           bool          `mapstructure:"development"`
	PageCacheTTL          time.Duration `mapstructure:"pageCacheTTL"` // default 5m, 0 in development
	ContentSecurityPolicy string        `mapstructure:"contentSecurityPolicy"`

	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

// SocialLink is an icon link shown in the site header.
type SocialLink struct {
	Icon  string `mapstructure:"icon"`
	Label string `mapstructure:"label"`
	Href  string `mapstructure:"href"`
}

// SidebarGroup is a labelled group of sidebar entries, in display order.
type SidebarGroup struct {
	Label string        `mapstructure:"label"`
	Items []SidebarItem `mapstructure:"items"`
}

// SidebarItem references a content page by slug, or an arbitrary link.
// A bare string in the config file decodes as a slug reference.
type SidebarItem struct {
	Slug  string `mapstructure:"slug"`
	Label string `mapstructure:"label"`
	Link  string `mapstructure:"link"`
}

// EditLink configures the "Edit page" link shown under every page.
type EditLink struct {
	BaseURL string `mapstructure:"baseUrl"`
}

// AnalyticsConfig controls the built-in page view collection.
type AnalyticsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	DatabasePath  string `mapstructure:"databasePath"`  // default "data/analytics.db"
	RetentionDays int    `mapstructure:"retentionDays"` // default 365
}

// AdminConfig enables the password protected analytics dashboard.
type AdminConfig struct {
	Password      string `mapstructure:"password"`
	SessionSecret string `mapstructure:"sessionSecret"`
	CookieSecure  bool   `mapstructure:"cookieSecure"`
}

const defaultCSP = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'"

// DefaultConfig returns the configuration of the Go from TS tutorial site.
func DefaultConfig() SiteConfig {
	cfg := SiteConfig{
		Title:       "Go from TS",
		Description: DefaultDescription,
		URL:         "https://gofromts.tmkn.dev",
		Social: []SocialLink{
			{Icon: "github", Label: "GitHub", Href: "https://github.com/tmkn/gofromts"},
			{Icon: "x.com", Label: "@tmkn", Href: "https://x.com/tmkndev"},
		},
		Sidebar: []SidebarGroup{
			{
				Label: "Start",
				Items: slugItems("start/why", "start/targetgroup", "start/usage"),
			},
			{
				Label: "Basics",
				Items: slugItems(
					"basic/comments",
					"basic/variables",
					"basic/if",
					"basic/for",
					"basic/while",
					"basic/switch",
				),
			},
			{
				Label: "Functions",
				Items: slugItems("function/functions", "function/arguments", "function/returns"),
			},
		},
		EditLink: EditLink{BaseURL: "https://github.com/tmkn/gofromts/edit/master/"},
		Head: []HeadTag{
			{
				Tag: "script",
				Attrs: map[string]any{
					"src":         "/js/script.js",
					"data-domain": "gofromts.tmkn.dev",
					"defer":       true,
				},
			},
		},
		SocialImage: "https://gofromts.tmkn.dev/og.png",
		Analytics:   AnalyticsConfig{Enabled: true},
	}
	cfg.setDefaults()
	return cfg
}

func slugItems(slugs ...string) []SidebarItem {
	items := make([]SidebarItem, len(slugs))
	for i, s := range slugs {
		items[i] = SidebarItem{Slug: s}
	}
	return items
}

func (c *SiteConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "Docs"
	}
	if c.Description == "" {
		c.Description = DefaultDescription
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PageCacheTTL == 0 && !c.Development {
		c.PageCacheTTL = 5 * time.Minute
	}
	if c.ContentSecurityPolicy == "" {
		c.ContentSecurityPolicy = defaultCSP
	}
	if c.Analytics.DatabasePath == "" {
		c.Analytics.DatabasePath = "data/analytics.db"
	}
	if c.Analytics.RetentionDays == 0 {
		c.Analytics.RetentionDays = 365
	}
	if c.SocialImage == "" {
		if img, err := AbsoluteURL(c.URL, socialImagePath); err == nil {
			c.SocialImage = img
		}
	}
}

// Validate reports the first configuration error found.
// Sidebar slugs are checked against content separately, see CheckSidebar.
func (c *SiteConfig) Validate() error {
	if _, err := siteBase(c.URL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	for i, s := range c.Social {
		if s.Href == "" {
			return fmt.Errorf("social[%d]: href is required", i)
		}
	}

	seen := make(map[string]struct{})
	for gi, g := range c.Sidebar {
		if strings.TrimSpace(g.Label) == "" {
			return fmt.Errorf("sidebar[%d]: label is required", gi)
		}
		for ii, it := range g.Items {
			if err := it.validate(); err != nil {
				return fmt.Errorf("sidebar[%d].items[%d]: %w", gi, ii, err)
			}
			if it.Slug == "" {
				continue
			}
			if _, dup := seen[it.Slug]; dup {
				return fmt.Errorf("sidebar[%d].items[%d]: duplicate slug %q", gi, ii, it.Slug)
			}
			seen[it.Slug] = struct{}{}
		}
	}

	for i, t := range c.Head {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("head[%d]: %w", i, err)
		}
	}

	if c.Admin.Password != "" && c.Admin.SessionSecret == "" {
		return errors.New("admin.sessionSecret is required when admin.password is set")
	}
	if c.PageCacheTTL < 0 {
		return errors.New("pageCacheTTL must not be negative")
	}
	return nil
}

func (it SidebarItem) validate() error {
	switch {
	case it.Slug != "" && it.Link != "":
		return errors.New("slug and link are mutually exclusive")
	case it.Slug == "" && it.Link == "":
		return errors.New("either slug or link is required")
	case it.Link != "" && it.Label == "":
		return fmt.Errorf("link %q needs a label", it.Link)
	}
	return nil
}

// siteBase parses the configured site URL, requiring it to be absolute.
func siteBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrSiteURLMissing
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSiteURLMissing, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrSiteURLMissing, raw)
	}
	return u, nil
}

// envKeys are settings that can be overridden with GOFROMTS_* variables.
var envKeys = []string{
	"url",
	"addr",
	"development",
	"contentDir",
	"analytics.enabled",
	"analytics.databasePath",
	"admin.password",
	"admin.sessionSecret",
	"admin.cookieSecure",
}

// LoadConfig reads the site configuration from path. With an empty path it
// looks for docsite.{yaml,toml,json} in the working directory and falls back
// to DefaultConfig when none exists. Environment variables prefixed with
// GOFROMTS_ override file values.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("GOFROMTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return SiteConfig{}, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docsite")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
		cfg := DefaultConfig()
		applyEnv(v, &cfg)
		return cfg, cfg.Validate()
	}

	var cfg SiteConfig
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		sidebarItemHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, cfg.Validate()
}

func applyEnv(v *viper.Viper, cfg *SiteConfig) {
	if v.IsSet("url") {
		cfg.URL = v.GetString("url")
		if img, err := AbsoluteURL(cfg.URL, socialImagePath); err == nil {
			cfg.SocialImage = img
		}
	}
	if v.IsSet("addr") {
		cfg.Addr = v.GetString("addr")
	}
	if v.IsSet("development") {
		cfg.Development = v.GetBool("development")
		if cfg.Development {
			cfg.PageCacheTTL = 0
		}
	}
	if v.IsSet("contentDir") {
		cfg.ContentDir = v.GetString("contentDir")
	}
	if v.IsSet("analytics.enabled") {
		cfg.Analytics.Enabled = v.GetBool("analytics.enabled")
	}
	if v.IsSet("analytics.databasePath") {
		cfg.Analytics.DatabasePath = v.GetString("analytics.databasePath")
	}
	if v.IsSet("admin.password") {
		cfg.Admin.Password = v.GetString("admin.password")
	}
	if v.IsSet("admin.sessionSecret") {
		cfg.Admin.SessionSecret = v.GetString("admin.sessionSecret")
	}
	if v.IsSet("admin.cookieSecure") {
		cfg.Admin.CookieSecure = v.GetBool("admin.cookieSecure")
	}
}

var sidebarItemType = reflect.TypeOf(SidebarItem{})

// sidebarItemHook decodes `- start/why` as SidebarItem{Slug: "start/why"}.
func sidebarItemHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != sidebarItemType {
		return data, nil
	}
	return SidebarItem{Slug: data.(string)}, nil
}

// Option configures additional App behavior.
type Option func(*App)
