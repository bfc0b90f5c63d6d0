package views

import (
	"html/template"

	"github.com/eringen/postsite/content"
)

// SiteConfig carries the site-wide values templates read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Disqus      string
}

// FeedURL returns the absolute feed URL.
func (c SiteConfig) FeedURL() string {
	return buildURL(c.URL) + "feed.xml"
}

// PostView is a post ready for a template: its rendered body, excerpt and
// absolute URL.
type PostView struct {
	content.Post
	HTML    template.HTML
	Excerpt string
	URL     string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the head template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Pager links an index page to its neighbours.
type Pager struct {
	Number  int
	Total   int
	PrevURL string
	NextURL string
}

// Page is the data every layout receives.
type Page struct {
	Site   SiteConfig
	Meta   PageMeta
	Post   *PostView
	Posts  []PostView
	Tags   []string
	Tag    string
	Pager  *Pager
	JSONLD template.JS

	// Admin pages only.
	CSRF      string
	Message   string
	ShowError bool
	All       []content.Post
	Layouts   []string
}
