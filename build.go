package postsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/postsite/content"
)

// ErrUnsafeDestination is returned when the build output would overwrite the
// source tree.
var ErrUnsafeDestination = errors.New("postsite: unsafe destination")

// BuildOptions selects which posts a build includes.
type BuildOptions struct {
	IncludeDrafts bool
}

// Report summarizes a build or check.
type Report struct {
	Posts    int
	Pages    int
	Assets   int
	Resized  int
	Duration time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("%d posts, %d pages, %d assets (%d resized) in %s", r.Posts, r.Pages, r.Assets, r.Resized, r.Duration.Round(time.Millisecond))
}

// Builder renders a site into its destination directory.
type Builder struct {
	cfg    SiteConfig
	site   *Site
	log    Logger
	drafts bool
}

// NewBuilder validates cfg and loads its layouts.
func NewBuilder(cfg SiteConfig, log Logger, opts BuildOptions) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	site, err := NewSite(cfg)
	if err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, site: site, log: log, drafts: opts.IncludeDrafts || cfg.ShowDrafts}, nil
}

// output is one generated file, keyed by its slash path below the destination.
type output struct {
	path string
	body []byte
}

// Check loads and renders the whole site in memory without writing anything.
// Every broken post is reported, joined into one error.
func (b *Builder) Check(ctx context.Context) (Report, error) {
	start := time.Now()
	posts, err := content.Load(ctx, b.cfg.Source, content.LoadOptions{IncludeDrafts: b.drafts})
	if err != nil {
		return Report{}, err
	}
	outs, err := b.render(ctx, posts)
	if err != nil {
		return Report{}, err
	}
	return Report{Posts: len(posts), Pages: len(outs), Duration: time.Since(start)}, nil
}

// Build renders the site and replaces the destination directory with it.
// Nothing is written unless every page renders.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	start := time.Now()
	posts, err := content.Load(ctx, b.cfg.Source, content.LoadOptions{IncludeDrafts: b.drafts})
	if err != nil {
		return Report{}, err
	}
	b.log.Infof("loaded %d posts from %s", len(posts), b.cfg.Source)
	outs, err := b.render(ctx, posts)
	if err != nil {
		return Report{}, err
	}
	if err := b.cleanDestination(); err != nil {
		return Report{}, err
	}
	for _, o := range outs {
		dst := filepath.Join(b.cfg.Destination, filepath.FromSlash(o.path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return Report{}, err
		}
		if err := os.WriteFile(dst, o.body, 0o644); err != nil {
			return Report{}, err
		}
	}
	publicDir := filepath.Join(b.cfg.Destination, "public")
	copied, resized, err := copyAssets(b.cfg.StaticDir, publicDir, b.cfg.ImageMaxWidth)
	if err != nil {
		return Report{}, fmt.Errorf("postsite: copy assets: %w", err)
	}
	if resized > 0 {
		b.log.Infof("resized %d images wider than %dpx", resized, b.cfg.ImageMaxWidth)
	}
	n, err := writeEmbeddedAssets(publicDir)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Posts:    len(posts),
		Pages:    len(outs),
		Assets:   copied + n,
		Resized:  resized,
		Duration: time.Since(start),
	}, nil
}

// render produces every page of the site. Generated paths that collide, for
// example a custom permalink of /page/2/, are an error.
func (b *Builder) render(ctx context.Context, posts []content.Post) ([]output, error) {
	all, err := b.site.ViewAll(ctx, posts)
	if err != nil {
		return nil, err
	}

	postOuts := make([]output, len(all))
	errs := make([]error, len(all))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range all {
		g.Go(func() error {
			body, err := renderBytes(gctx, b.site.Views.Post(all[i], Recent(all[i], all)))
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", all[i].Path, err)
				return nil
			}
			postOuts[i] = output{path: pagePath(all[i].Permalink), body: body}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	outs := postOuts
	tags := content.Tags(posts)
	for _, pg := range content.Paginate(posts, b.cfg.Paginate) {
		body, err := renderBytes(ctx, b.site.Views.Index(pageViews(all, pg, b.cfg.Paginate), indexPager(pg), tags))
		if err != nil {
			return nil, fmt.Errorf("postsite: render index page %d: %w", pg.Number, err)
		}
		outs = append(outs, output{path: pagePath(content.PagePath(pg.Number)), body: body})
	}
	for _, t := range tags {
		body, err := renderBytes(ctx, b.site.Views.Tag(t, tagViews(all, t)))
		if err != nil {
			return nil, fmt.Errorf("postsite: render tag %s: %w", t, err)
		}
		outs = append(outs, output{path: pagePath(content.TagPath(t)), body: body})
	}
	notFound, err := renderBytes(ctx, b.site.Views.NotFound())
	if err != nil {
		return nil, fmt.Errorf("postsite: render 404: %w", err)
	}
	outs = append(outs, output{path: "404.html", body: notFound})

	var feed, sitemap bytes.Buffer
	if err := writeRSS(&feed, b.cfg, all); err != nil {
		return nil, fmt.Errorf("postsite: render feed: %w", err)
	}
	if err := writeSitemap(&sitemap, b.cfg, all, tags); err != nil {
		return nil, fmt.Errorf("postsite: render sitemap: %w", err)
	}
	outs = append(outs,
		output{path: "feed.xml", body: feed.Bytes()},
		output{path: "sitemap.xml", body: sitemap.Bytes()},
		output{path: "robots.txt", body: []byte(robotsTxt(b.cfg))},
	)

	seen := make(map[string]bool, len(outs))
	for _, o := range outs {
		if seen[o.path] {
			return nil, fmt.Errorf("%w: %s is generated twice", content.ErrDuplicatePermalink, o.path)
		}
		seen[o.path] = true
	}
	return outs, nil
}

// pagePath maps a URL path like /2014/05/01/jaxb/ to 2014/05/01/jaxb/index.html.
func pagePath(urlPath string) string {
	return strings.TrimPrefix(urlPath, "/") + "index.html"
}

func renderBytes(ctx context.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cleanDestination empties the destination after making sure it is not the
// working directory, the source tree, or a parent of either.
func (b *Builder) cleanDestination() error {
	dest, err := filepath.Abs(b.cfg.Destination)
	if err != nil {
		return err
	}
	src, err := filepath.Abs(b.cfg.Source)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	static, err := filepath.Abs(b.cfg.StaticDir)
	if err != nil {
		return err
	}
	for _, protected := range []string{src, cwd, static} {
		if within(protected, dest) {
			return fmt.Errorf("%w: %s contains %s", ErrUnsafeDestination, dest, protected)
		}
	}
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	return os.MkdirAll(dest, 0o755)
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// writeEmbeddedAssets adds the default assets the static dir did not provide.
func writeEmbeddedAssets(dir string) (int, error) {
	n := 0
	err := fs.WalkDir(EmbeddedAssets, "embedded", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dst := filepath.Join(dir, strings.TrimPrefix(p, "embedded/"))
		if _, err := os.Stat(dst); err == nil {
			return nil
		}
		data, err := EmbeddedAssets.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		n++
		return os.WriteFile(dst, data, 0o644)
	})
	return n, err
}
