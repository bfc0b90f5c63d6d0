package crosspost

import (
	"context"
	"errors"
	"fmt"
	"html"
)

// Item is a post that may be crossposted.
type Item struct {
	Permalink    string
	Title        string
	HTML         string
	CanonicalURL string
	Tags         []string
	// Eligible is true for published, non-draft posts with crosspost_to_medium set.
	Eligible bool
}

// Ledger remembers which posts were already crossposted.
type Ledger interface {
	Crossposted(permalink string) (string, bool, error)
	RecordCrosspost(permalink, mediumID, mediumURL string) error
}

// Poster creates Medium posts. *Client implements it.
type Poster interface {
	Me(ctx context.Context) (User, error)
	CreatePost(ctx context.Context, authorID string, a Article) (Created, error)
}

// Logger is the logging surface the runner writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Runner crossposts eligible items that are not yet in the ledger.
type Runner struct {
	Poster        Poster
	Ledger        Ledger
	Log           Logger
	AuthorID      string // looked up with Me when empty
	PublishStatus string
	License       string
	DryRun        bool
}

// Result counts what a run did. A dry run only fills WouldPost and Skipped.
type Result struct {
	Posted    int
	WouldPost int
	Skipped   int
	Failed    int
}

// Run posts every eligible item once. A failed item does not stop the others;
// the failures are returned joined.
func (r *Runner) Run(ctx context.Context, items []Item) (Result, error) {
	var res Result
	var errs []error
	authorID := r.AuthorID
	for _, it := range items {
		if !it.Eligible {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if u, done, err := r.Ledger.Crossposted(it.Permalink); err != nil {
			return res, err
		} else if done {
			r.Log.Infof("skip %s: already on medium at %s", it.Permalink, u)
			res.Skipped++
			continue
		}
		if r.DryRun {
			r.Log.Infof("would crosspost %s (%q)", it.Permalink, it.Title)
			res.WouldPost++
			continue
		}
		if authorID == "" {
			me, err := r.Poster.Me(ctx)
			if err != nil {
				return res, fmt.Errorf("crosspost: look up author: %w", err)
			}
			authorID = me.ID
		}
		created, err := r.Poster.CreatePost(ctx, authorID, r.article(it))
		if err != nil {
			r.Log.Errorf("crosspost %s: %v", it.Permalink, err)
			errs = append(errs, fmt.Errorf("%s: %w", it.Permalink, err))
			res.Failed++
			if errors.Is(err, ErrUnauthorized) {
				break
			}
			continue
		}
		if err := r.Ledger.RecordCrosspost(it.Permalink, created.ID, created.URL); err != nil {
			return res, fmt.Errorf("crosspost: record %s: %w", it.Permalink, err)
		}
		r.Log.Infof("crossposted %s to %s", it.Permalink, created.URL)
		res.Posted++
	}
	return res, errors.Join(errs...)
}

// article prepends the title and appends a link back to the original post.
func (r *Runner) article(it Item) Article {
	body := "<h1>" + html.EscapeString(it.Title) + "</h1>\n" + it.HTML
	if it.CanonicalURL != "" {
		body += "\n<p><em>This article was originally published on <a href=\"" +
			html.EscapeString(it.CanonicalURL) + "\">my blog</a>.</em></p>"
	}
	return Article{
		Title:         it.Title,
		ContentFormat: "html",
		Content:       body,
		CanonicalURL:  it.CanonicalURL,
		Tags:          it.Tags,
		PublishStatus: r.PublishStatus,
		License:       r.License,
	}
}
