// Package views holds the page layouts. Built-in layouts are embedded; a site
// can override them or add new ones with _layouts/<name>.html files, which may
// call the "head", "foot", "post-summary" and "pager" partials.
package views

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/postsite/content"
)

//go:embed templates/*.html
var builtin embed.FS

// ErrUnknownLayout is returned when a post names a layout that does not exist.
var ErrUnknownLayout = errors.New("views: unknown layout")

const (
	LayoutDefault  = "default"
	LayoutPost     = "post"
	LayoutPage     = "page"
	LayoutNotFound = "404"
	LayoutError    = "500"

	adminPrefix = "admin_"
)

// Views renders pages through named layouts.
type Views struct {
	site    SiteConfig
	layouts map[string]*template.Template
	admin   map[string]*template.Template
}

// New parses the built-in layouts and then any *.html files in layoutDir. A
// missing layoutDir is not an error.
func New(site SiteConfig, layoutDir string) (*Views, error) {
	partials, err := template.ParseFS(builtin, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("views: parse partials: %w", err)
	}
	v := &Views{
		site:    site,
		layouts: make(map[string]*template.Template),
		admin:   make(map[string]*template.Template),
	}

	entries, err := builtin.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".html")
		if name == "partials" {
			continue
		}
		src, err := builtin.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, err
		}
		set := v.layouts
		if strings.HasPrefix(name, adminPrefix) {
			set = v.admin
		}
		if err := add(set, partials, name, string(src)); err != nil {
			return nil, err
		}
	}

	if layoutDir == "" {
		return v, nil
	}
	files, err := filepath.Glob(filepath.Join(layoutDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(f), ".html")
		if strings.HasPrefix(name, adminPrefix) {
			continue
		}
		if err := add(v.layouts, partials, name, string(src)); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
	}
	return v, nil
}

func add(set map[string]*template.Template, partials *template.Template, name, src string) error {
	t, err := partials.Clone()
	if err != nil {
		return err
	}
	if _, err := t.New(name).Parse(src); err != nil {
		return fmt.Errorf("views: parse layout %q: %w", name, err)
	}
	set[name] = t
	return nil
}

// HasLayout reports whether a layout with this name exists.
func (v *Views) HasLayout(name string) bool {
	_, ok := v.layouts[name]
	return ok
}

// Layouts lists the available layout names.
func (v *Views) Layouts() []string {
	names := make([]string, 0, len(v.layouts))
	for n := range v.layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Layout returns a component that executes the named layout with page. The
// site config and JSON-LD are filled in when the caller left them empty.
func (v *Views) Layout(name string, page Page) templ.Component {
	return v.execute(v.layouts, name, page)
}

func (v *Views) execute(set map[string]*template.Template, name string, page Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := set[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLayout, name)
		}
		if page.Site == (SiteConfig{}) {
			page.Site = v.site
		}
		if page.JSONLD == "" {
			page.JSONLD = template.JS(WebsiteJsonLD(page.Site))
		}
		return t.ExecuteTemplate(w, name, page)
	})
}

// Post renders a single post through the layout named in its front matter.
func (v *Views) Post(post PostView, recent []PostView) templ.Component {
	meta := PageMeta{
		Title:       post.Title,
		Description: post.Excerpt,
		URL:         post.URL,
		OGType:      "article",
	}
	return v.Layout(post.Layout, Page{
		Site:   v.site,
		Meta:   meta,
		Post:   &post,
		Posts:  recent,
		Tags:   post.Tags,
		JSONLD: template.JS(BlogPostingJsonLD(v.site, post)),
	})
}

// Index renders one page of the post listing.
func (v *Views) Index(posts []PostView, pager Pager, tags []string) templ.Component {
	title := ""
	if pager.Number > 1 {
		title = fmt.Sprintf("Page %d", pager.Number)
	}
	pageURL := buildURL(v.site.URL)
	if pager.Number > 1 {
		pageURL = buildURL(v.site.URL, "page", fmt.Sprint(pager.Number))
	}
	return v.Layout(LayoutDefault, Page{
		Site:  v.site,
		Meta:  PageMeta{Title: title, Description: v.site.Description, URL: pageURL, OGType: "website"},
		Posts: posts,
		Tags:  tags,
		Pager: &pager,
	})
}

// Tag renders the listing of posts carrying tag.
func (v *Views) Tag(tag string, posts []PostView) templ.Component {
	return v.Layout(LayoutDefault, Page{
		Site:  v.site,
		Meta:  PageMeta{Title: "Tag: " + tag, URL: buildURL(v.site.URL, "tags", tag), OGType: "website"},
		Posts: posts,
		Tag:   tag,
	})
}

// NotFound renders the 404 page.
func (v *Views) NotFound() templ.Component {
	return v.Layout(LayoutNotFound, Page{
		Site: v.site,
		Meta: PageMeta{Title: "Not found", URL: buildURL(v.site.URL), OGType: "website"},
	})
}

// ServerError renders the 500 page.
func (v *Views) ServerError() templ.Component {
	return v.Layout(LayoutError, Page{
		Site: v.site,
		Meta: PageMeta{Title: "Server error", URL: buildURL(v.site.URL), OGType: "website"},
	})
}

// AdminLogin renders the admin password form.
func (v *Views) AdminLogin(showError bool, csrfToken string) templ.Component {
	return v.execute(v.admin, adminPrefix+"login", Page{
		Site:      v.site,
		Meta:      PageMeta{Title: "Admin", URL: buildURL(v.site.URL, "admin"), OGType: "website"},
		CSRF:      csrfToken,
		ShowError: showError,
	})
}

// AdminDashboard lists every indexed post with its flags.
func (v *Views) AdminDashboard(posts []content.Post, message, csrfToken string) templ.Component {
	return v.execute(v.admin, adminPrefix+"dashboard", Page{
		Site:    v.site,
		Meta:    PageMeta{Title: "Admin", URL: buildURL(v.site.URL, "admin"), OGType: "website"},
		CSRF:    csrfToken,
		Message: message,
		All:     posts,
		Layouts: v.Layouts(),
	})
}

// AdminPost shows one post's front matter and source.
func (v *Views) AdminPost(post content.Post, csrfToken string) templ.Component {
	return v.execute(v.admin, adminPrefix+"post", Page{
		Site: v.site,
		Meta: PageMeta{Title: "Admin: " + post.Title, URL: buildURL(v.site.URL, "admin", "post"), OGType: "website"},
		Post: &PostView{Post: post, URL: AbsURL(v.site.URL, post.Permalink)},
		CSRF: csrfToken,
	})
}
