// Package gofromts is a small documentation site engine built with Echo and
// templ. It serves markdown pages organised by a configured sidebar, injects
// head tags through a route middleware pipeline and can export the site as
// static files.
//
// Templates are provided through ViewFuncs; DefaultViews renders the stock
// theme.
package gofromts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tmkn/gofromts/analytics"
	"github.com/tmkn/gofromts/views"
)

// ViewFuncs holds the templ components the engine renders.
type ViewFuncs struct {
	Page           func(d views.PageData) templ.Component
	NotFound       func(site views.Site) templ.Component
	ServerError    func(site views.Site) templ.Component
	AdminLogin     func(site views.Site, showError bool, csrfToken string) templ.Component
	AdminDashboard func(d views.DashboardData) templ.Component
}

// DefaultViews returns the stock theme.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:           views.Page,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
	}
}

// App wires together content, caches, handlers, middleware and views.
type App struct {
	Echo  *echo.Echo
	Cache *PageCache
	Views ViewFuncs
	Log   *zap.SugaredLogger

	site            *SiteConfig
	content         afero.Fs
	static          afero.Fs
	routeMiddleware []RouteMiddleware
	customRoutes    []func(*App)

	loginLimiter     *LoginLimiter
	analyticsStore   *analytics.Store
	analyticsHandler *analytics.Handler
	stopCleanup      func()

	setupOnce sync.Once
	setupErr  error

	ogOnce  sync.Once
	ogImage []byte
	ogErr   error
}

// New creates an App for cfg. The configuration is copied and must not be
// changed afterwards. SocialMeta is always the first route middleware.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()
	site := &cfg

	a := &App{
		Echo:            echo.New(),
		Views:           DefaultViews(),
		site:            site,
		routeMiddleware: []RouteMiddleware{SocialMeta},
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	if a.Log == nil {
		a.Log = NewLogger(site.Development)
	}
	if a.content == nil {
		a.content = afero.NewBasePathFs(afero.NewOsFs(), site.ContentDir)
	}
	if a.static == nil {
		a.static = afero.NewBasePathFs(afero.NewOsFs(), site.StaticDir)
	}
	a.Cache = NewPageCache(NewContentStore(a.content, site.Development), site.PageCacheTTL)
	return a
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *App) { a.Log = log }
}

// WithContentFs reads pages from fs instead of ContentDir.
func WithContentFs(fs afero.Fs) Option {
	return func(a *App) { a.content = fs }
}

// WithStaticFs serves /public and overrides such as og.png from fs instead
// of StaticDir.
func WithStaticFs(fs afero.Fs) Option {
	return func(a *App) { a.static = fs }
}

// WithRouteMiddleware appends route middleware. They run in the order given,
// after SocialMeta.
func WithRouteMiddleware(mw ...RouteMiddleware) Option {
	return func(a *App) { a.routeMiddleware = append(a.routeMiddleware, mw...) }
}

// WithViews replaces the view functions.
func WithViews(v ViewFuncs) Option {
	return func(a *App) { a.Views = v }
}

// WithCustomRoutes registers extra routes after the built-in ones.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) { a.customRoutes = append(a.customRoutes, fn) }
}

// Site returns the configuration. It is shared and must not be modified.
func (a *App) Site() *SiteConfig {
	return a.site
}

func (a *App) siteView() views.Site {
	social := make([]views.SocialLink, len(a.site.Social))
	for i, s := range a.site.Social {
		social[i] = views.SocialLink{Icon: s.Icon, Label: s.Label, Href: s.Href}
	}
	return views.Site{
		Title:       a.site.Title,
		Description: a.site.Description,
		URL:         a.site.URL,
		Social:      social,
	}
}

func (a *App) adminEnabled() bool {
	return a.site.Admin.Password != ""
}

// Check validates the configuration, loads all content and verifies that
// every sidebar slug has a page.
func (a *App) Check() ([]Page, error) {
	if err := a.site.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	pages, err := a.Cache.ListPages()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	index, err := a.Cache.PageIndex()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if err := CheckSidebar(a.site, index); err != nil {
		return nil, err
	}
	return pages, nil
}

// Setup checks the site, opens the analytics store and registers middleware
// and routes. It runs once; later calls return the first result.
func (a *App) Setup(ctx context.Context) error {
	a.setupOnce.Do(func() {
		a.setupErr = a.setup(ctx)
	})
	return a.setupErr
}

func (a *App) setup(ctx context.Context) error {
	pages, err := a.Check()
	if err != nil {
		return err
	}
	a.Log.Infow("content loaded", "pages", len(pages), "dir", a.site.ContentDir)

	if a.site.Analytics.Enabled {
		store, err := analytics.NewStore(ctx, a.site.Analytics.DatabasePath)
		if err != nil {
			return fmt.Errorf("init analytics: %w", err)
		}
		a.analyticsStore = store
		stop, err := store.StartCleanupScheduler(a.site.Analytics.RetentionDays, a.Log)
		if err != nil {
			return err
		}
		a.stopCleanup = stop
		host := ""
		if u, err := url.Parse(a.site.URL); err == nil {
			host = u.Hostname()
		}
		a.analyticsHandler = analytics.NewHandler(store, host, a.Log.Named("analytics"))
	}

	if a.adminEnabled() {
		a.loginLimiter = NewLoginLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves HTTP on the configured address until
// Shutdown is called.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	a.Log.Infow("listening", "addr", a.site.Addr, "url", a.site.URL)
	if err := a.Echo.Start(a.site.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the analytics store and background workers.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.analyticsStore != nil {
		err := a.analyticsStore.Close()
		a.analyticsStore = nil
		return err
	}
	return nil
}

// socialImage returns the generated preview image, rendering it once.
func (a *App) socialImage() ([]byte, error) {
	a.ogOnce.Do(func() {
		a.ogImage, a.ogErr = RenderSocialImage(a.site.Title, a.site.Description)
	})
	return a.ogImage, a.ogErr
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/style.css", embeddedAsset(stylesheetAsset, "text/css; charset=utf-8"))
	e.GET("/public/*", echo.WrapHandler(http.StripPrefix("/public/", staticHandler(a.static))))
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/og.png", a.handleSocialImage)
	e.GET("/healthz", a.handleHealth)

	if a.analyticsHandler != nil {
		e.GET("/js/script.js", embeddedAsset(scriptAsset, "text/javascript; charset=utf-8"))
	}

	if a.adminEnabled() {
		admin := e.Group("/admin", a.adminMiddleware()...)
		admin.GET("/", a.handleAdmin)
		admin.POST("/login/", a.handleAdminLogin)
		admin.POST("/logout/", handleAdminLogout)
		if a.analyticsHandler != nil {
			a.analyticsHandler.RegisterRoutes(e, admin, requireAdmin)
		}
	} else if a.analyticsHandler != nil {
		e.POST("/api/analytics/collect", a.analyticsHandler.Collect)
	}

	e.GET("/", a.handlePage)
	e.GET("/*", a.handlePage)
}
