package postsite

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/eringen/postsite/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category,omitempty"`
}

// writeRSS encodes an RSS 2.0 feed of the newest cfg.FeedLimit posts. posts
// must already be sorted newest first.
func writeRSS(w io.Writer, cfg SiteConfig, posts []views.PostView) error {
	if len(posts) > cfg.FeedLimit {
		posts = posts[:cfg.FeedLimit]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        p.URL,
			Description: p.Excerpt,
			PubDate:     p.Date.Format(time.RFC1123Z),
			GUID:        p.URL,
			Categories:  p.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        BuildURL(cfg.URL),
			Description: cfg.Description,
			Items:       items,
		},
	}
	if len(posts) > 0 {
		feed.Channel.LastBuildDate = posts[0].Date.Format(time.RFC1123Z)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}
