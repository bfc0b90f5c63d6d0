package postsite

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postsite/content"
	"github.com/eringen/postsite/views"
)

func (a *App) handleIndex(c echo.Context) error {
	return a.renderIndexPage(c, 1)
}

func (a *App) handlePage(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		return echo.ErrNotFound
	}
	if n == 1 {
		return c.Redirect(http.StatusMovedPermanently, "/")
	}
	return a.renderIndexPage(c, n)
}

func (a *App) renderIndexPage(c echo.Context, n int) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	pages := content.Paginate(posts, a.Config.Paginate)
	if n > len(pages) {
		return echo.ErrNotFound
	}
	pg := pages[n-1]
	pageViews, err := a.Site.ViewAll(c.Request().Context(), pg.Posts)
	if err != nil {
		return err
	}
	return Render(c, a.Site.Views.Index(pageViews, indexPager(pg), tags))
}

func (a *App) handleTag(c echo.Context) error {
	tag := content.NormalizeTag(c.Param("tag"))
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return echo.ErrNotFound
	}
	tagged, err := a.Site.ViewAll(c.Request().Context(), posts)
	if err != nil {
		return err
	}
	return Render(c, a.Site.Views.Tag(tag, tagged))
}

func (a *App) handlePost(c echo.Context) error {
	path := c.Request().URL.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	post, err := a.Cache.GetPost(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	view, err := a.Site.View(post)
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return Render(c, a.Site.Views.Post(view, Recent(view, a.listViews(posts))))
}

// listViews wraps posts for link lists without rendering their bodies.
func (a *App) listViews(posts []content.Post) []views.PostView {
	out := make([]views.PostView, len(posts))
	for i, p := range posts {
		out[i] = views.PostView{Post: p, URL: views.AbsURL(a.Config.URL, p.Permalink)}
	}
	return out
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), a.Config, a.listViews(posts), tags)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	if len(posts) > a.Config.FeedLimit {
		posts = posts[:a.Config.FeedLimit]
	}
	items, err := a.Site.ViewAll(c.Request().Context(), posts)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeRSS(c.Response(), a.Config, items)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config))
}

// handleStylesheet serves the site's own site.css, falling back to the
// embedded default.
func (a *App) handleStylesheet(c echo.Context) error {
	own := filepath.Join(a.Config.StaticDir, "site.css")
	if _, err := os.Stat(own); err == nil {
		return c.File(own)
	}
	data, err := fs.ReadFile(EmbeddedAssets, "embedded/site.css")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", data)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Site.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Site.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
