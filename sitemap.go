package postsite

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/eringen/postsite/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemap lists the index, every post and every tag page.
func writeSitemap(w io.Writer, cfg SiteConfig, posts []views.PostView, tags []string) error {
	base := cfg.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	if len(posts) > 0 {
		urls[0].LastMod = posts[0].DateString()
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{Loc: p.URL, LastMod: p.DateString()})
	}
	for _, t := range tags {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "tags", t)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

// robotsTxt allows everything but the admin area and points at the sitemap.
func robotsTxt(cfg SiteConfig) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %ssitemap.xml\n", BuildURL(cfg.URL))
}
