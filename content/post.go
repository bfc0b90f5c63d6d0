// Package content reads dated post files with front matter into Posts.
//
// A post lives at _posts/YYYY-MM-DD-title-slug.md (or .markdown, .html). The
// filename carries the publish date and the slug; the front matter block carries
// the layout, title and flags.
package content

import (
	"errors"
	"time"
)

var (
	// ErrBadFilename is returned when a post filename does not follow the
	// YYYY-MM-DD-title-slug.ext convention.
	ErrBadFilename = errors.New("content: bad post filename")
	// ErrNoFrontMatter is returned when a file has no front matter block.
	ErrNoFrontMatter = errors.New("content: missing front matter")
	// ErrBadFrontMatter is returned when the front matter cannot be decoded or
	// holds an invalid value.
	ErrBadFrontMatter = errors.New("content: invalid front matter")
	// ErrDuplicatePermalink is returned when two posts resolve to the same URL.
	ErrDuplicatePermalink = errors.New("content: duplicate permalink")
)

// Format is the body format of a post file.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// DefaultLayout is used when the front matter does not name a layout.
const DefaultLayout = "post"

// Post is a single blog post read from disk.
type Post struct {
	Path              string
	Slug              string
	Date              time.Time
	Title             string
	Layout            string
	Comments          bool
	GitHub            string
	CrosspostToMedium bool
	Tags              []string
	Categories        []string
	Summary           string
	Published         bool
	Draft             bool
	Permalink         string
	Format            Format
	Body              []byte
}

// DateString returns the publish date as YYYY-MM-DD.
func (p Post) DateString() string {
	return p.Date.Format("2006-01-02")
}

// HasTag reports whether the post carries tag, compared case-insensitively.
func (p Post) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range p.Tags {
		if NormalizeTag(t) == tag {
			return true
		}
	}
	return false
}

// NormalizeTag reduces a tag to its slug form, so "Spring Boot" and
// "spring-boot" are the same tag and the tag is safe to use in a URL path.
func NormalizeTag(t string) string {
	return Slugify(t)
}

// DefaultPermalink returns /YYYY/MM/DD/slug/ for the given date and slug.
func DefaultPermalink(date time.Time, slug string) string {
	return "/" + date.Format("2006/01/02") + "/" + slug + "/"
}
