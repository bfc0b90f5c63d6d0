package postsite

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/postsite/content"
	"github.com/eringen/postsite/markdown"
	"github.com/eringen/postsite/views"
)

// recentCount is how many other posts a post page links to.
const recentCount = 5

// Site turns loaded posts into rendered views. The static builder and the
// preview server share it so both produce the same pages.
type Site struct {
	Config SiteConfig
	Views  *views.Views
	md     *markdown.Renderer
}

// NewSite parses the layouts for cfg.
func NewSite(cfg SiteConfig) (*Site, error) {
	v, err := views.New(cfg.viewsConfig(), cfg.LayoutsDir())
	if err != nil {
		return nil, fmt.Errorf("postsite: load layouts: %w", err)
	}
	return &Site{Config: cfg, Views: v, md: markdown.New()}, nil
}

// View renders a post body and fills in its excerpt and absolute URL. A layout
// that does not exist is reported here, before any page is written.
func (s *Site) View(p content.Post) (views.PostView, error) {
	if !s.Views.HasLayout(p.Layout) {
		return views.PostView{}, fmt.Errorf("%s: %w: %q", p.Path, views.ErrUnknownLayout, p.Layout)
	}
	html, err := s.md.Render(p)
	if err != nil {
		return views.PostView{}, err
	}
	excerpt := p.Summary
	if excerpt == "" {
		first := markdown.FirstParagraph(string(html))
		if first == "" {
			first = string(html)
		}
		excerpt = markdown.Excerpt(first, s.Config.ExcerptLength)
	}
	return views.PostView{
		Post:    p,
		HTML:    html,
		Excerpt: excerpt,
		URL:     views.AbsURL(s.Config.URL, p.Permalink),
	}, nil
}

// ViewAll renders every post concurrently, bounded by GOMAXPROCS. It does not
// stop at the first failure; all failures are returned joined.
func (s *Site) ViewAll(ctx context.Context, posts []content.Post) ([]views.PostView, error) {
	out := make([]views.PostView, len(posts))
	errs := make([]error, len(posts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range posts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i], errs[i] = s.View(posts[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns up to recentCount posts other than current, preferring posts
// that share a tag with it.
func Recent(current views.PostView, all []views.PostView) []views.PostView {
	picked := make([]views.PostView, 0, recentCount)
	seen := map[string]bool{current.Permalink: true}
	for _, p := range views.FilterRelatedPosts(current, all) {
		if len(picked) == recentCount {
			return picked
		}
		picked = append(picked, p)
		seen[p.Permalink] = true
	}
	for _, p := range all {
		if len(picked) == recentCount {
			break
		}
		if !seen[p.Permalink] {
			picked = append(picked, p)
			seen[p.Permalink] = true
		}
	}
	return picked
}

// indexPager builds the pager for page pg.
func indexPager(pg content.Page) views.Pager {
	p := views.Pager{Number: pg.Number, Total: pg.Total}
	if pg.Prev > 0 {
		p.PrevURL = content.PagePath(pg.Prev)
	}
	if pg.Next > 0 {
		p.NextURL = content.PagePath(pg.Next)
	}
	return p
}

// pageViews slices the already rendered views that belong to page pg.
func pageViews(all []views.PostView, pg content.Page, perPage int) []views.PostView {
	start := (pg.Number - 1) * perPage
	end := start + len(pg.Posts)
	if start > len(all) {
		return nil
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func tagViews(all []views.PostView, tag string) []views.PostView {
	var out []views.PostView
	for _, p := range all {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}
