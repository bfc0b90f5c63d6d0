package postsite

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postsite/content"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Site.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, http.StatusOK, c.QueryParam("msg"))
}

// handleAdminPost shows one indexed post, unpublished ones included.
func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.QueryParam("permalink"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return Render(c, a.Site.Views.AdminPost(post, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Site.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminNew writes a post skeleton into _posts and reindexes.
func (a *App) handleAdminNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return a.renderAdminDashboard(c, http.StatusBadRequest, "Title is required.")
	}
	date := time.Now()
	if raw := strings.TrimSpace(c.FormValue("date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return a.renderAdminDashboard(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
		}
		date = d
	}
	layout := c.FormValue("layout")
	if layout != "" && !a.Site.Views.HasLayout(layout) {
		return a.renderAdminDashboard(c, http.StatusBadRequest, fmt.Sprintf("Unknown layout %q.", layout))
	}
	path, err := content.NewPostFile(a.Config.Source, title, date, content.NewPostOptions{
		Layout:            layout,
		Comments:          c.FormValue("comments") != "",
		GitHub:            c.FormValue("github"),
		CrosspostToMedium: c.FormValue("medium") != "",
		Tags:              FilterEmpty(strings.Split(c.FormValue("tags"), ",")),
	})
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return a.renderAdminDashboard(c, http.StatusConflict, "A post with that date and title already exists.")
		}
		return a.renderAdminDashboard(c, http.StatusBadRequest, "Could not create post: "+err.Error())
	}
	indexed, _, err := a.Reindex(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("reindex: %v", err)
		return a.renderAdminDashboard(c, http.StatusOK, "Created "+path+" but reindex failed: "+err.Error())
	}
	return a.renderAdminDashboard(c, http.StatusOK, fmt.Sprintf("Created %s. Indexed %d posts.", path, indexed))
}

// handleAdminDelete removes a post's source file and its index row.
func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.FormValue("permalink"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderAdminDashboard(c, http.StatusNotFound, "No such post.")
		}
		return err
	}
	src, err := filepath.Abs(a.Config.Source)
	if err != nil {
		return err
	}
	file, err := filepath.Abs(post.Path)
	if err != nil {
		return err
	}
	if !within(file, src) {
		return a.renderAdminDashboard(c, http.StatusBadRequest, "Refusing to delete a file outside the site.")
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := a.Store.DeletePost(post.Permalink); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, http.StatusOK, "Deleted "+post.Path+".")
}

func (a *App) handleAdminReindex(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	indexed, removed, err := a.Reindex(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("reindex: %v", err)
		return a.renderAdminDashboard(c, http.StatusOK, "Reindex failed: "+err.Error())
	}
	return a.renderAdminDashboard(c, http.StatusOK, fmt.Sprintf("Indexed %d posts, removed %d.", indexed, removed))
}

func (a *App) renderAdminDashboard(c echo.Context, code int, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Site.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}
