package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	PostsDir  = "_posts"
	DraftsDir = "_drafts"
)

// LoadOptions selects which files Load returns.
type LoadOptions struct {
	IncludeDrafts      bool
	IncludeUnpublished bool
}

// Load reads every post under dir/_posts (and dir/_drafts when requested). It
// keeps going past bad files and returns all of their errors joined, so one run
// reports every broken post.
func Load(ctx context.Context, dir string, opts LoadOptions) ([]Post, error) {
	var posts []Post
	var errs []error

	collect := func(root string, draft bool) error {
		return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && p == root {
					return filepath.SkipDir
				}
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := FormatFor(d.Name()); !ok {
				return nil
			}
			src, err := os.ReadFile(p)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			info, err := d.Info()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			post, err := Parse(p, src, ParseOptions{Draft: draft, ModTime: info.ModTime()})
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			posts = append(posts, post)
			return nil
		})
	}

	if err := collect(filepath.Join(dir, PostsDir), false); err != nil {
		return nil, err
	}
	if opts.IncludeDrafts {
		if err := collect(filepath.Join(dir, DraftsDir), true); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]string, len(posts))
	for _, p := range posts {
		if prev, ok := seen[p.Permalink]; ok {
			errs = append(errs, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicatePermalink, p.Permalink, prev, p.Path))
			continue
		}
		seen[p.Permalink] = p.Path
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if !opts.IncludeUnpublished {
		kept := posts[:0]
		for _, p := range posts {
			if p.Published {
				kept = append(kept, p)
			}
		}
		posts = kept
	}
	Sort(posts)
	return posts, nil
}

// Sort orders posts newest first, breaking ties by slug.
func Sort(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}
