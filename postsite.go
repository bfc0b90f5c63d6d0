// Package postsite builds a static blog from dated Markdown and HTML posts
// with front matter, and serves a live preview of the same pages with Echo.
//
// Posts live in _posts/YYYY-MM-DD-title-slug.md. The builder renders them
// through layouts into a destination directory; the preview server indexes
// them into SQLite and renders on request at the same permalinks.
package postsite

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postsite/content"
)

// App is the preview server. It wires together the index store, cache,
// handlers, middleware and layouts.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Site   *Site

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	log          Logger
}

// New creates an App for cfg. Call Setup (or Start) before serving.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	site, err := NewSite(cfg)
	if err != nil {
		return nil, err
	}
	e := echo.New()
	e.HideBanner = true
	a := &App{
		Config: cfg,
		Echo:   e,
		Site:   site,
		log:    e.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Setup opens the index, loads the posts from disk and registers middleware
// and routes.
func (a *App) Setup(ctx context.Context) error {
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("postsite: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	indexed, removed, err := a.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("postsite: index posts: %w", err)
	}
	a.log.Infof("indexed %d posts (%d removed)", indexed, removed)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the App up and serves until the server is closed.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Reindex reloads every post from disk into the store and drops the cache.
func (a *App) Reindex(ctx context.Context) (indexed, removed int, err error) {
	posts, err := content.Load(ctx, a.Config.Source, content.LoadOptions{
		IncludeDrafts:      a.Config.ShowDrafts,
		IncludeUnpublished: true,
	})
	if err != nil {
		return 0, 0, err
	}
	for _, p := range posts {
		if !a.Site.Views.HasLayout(p.Layout) {
			a.log.Warnf("%s: unknown layout %q", p.Path, p.Layout)
		}
	}
	removed, err = a.Store.Sync(ctx, posts)
	if err != nil {
		return 0, 0, err
	}
	a.Cache.Invalidate()
	return len(posts), removed, nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/site.css", a.handleStylesheet)
	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleIndex)
	e.GET("/page/:n/", a.handlePage)
	e.GET("/tags/:tag/", a.handleTag)

	if a.Config.AdminPassword != "" {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.GET("/admin/post/", a.handleAdminPost)
		e.POST("/admin/new/", a.handleAdminNew)
		e.POST("/admin/delete/", a.handleAdminDelete)
		e.POST("/admin/reindex/", a.handleAdminReindex)
	}

	// Posts may use custom permalinks, so anything else is looked up by path.
	e.GET("/*", a.handlePost)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
