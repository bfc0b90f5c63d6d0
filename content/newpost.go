package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"
)

// Slugify converts a title to a URL-safe slug. go-slug handles transliteration;
// the result is then restricted to lowercase letters, digits and single dashes.
func Slugify(title string) string {
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		s = title
	}
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NewPostOptions sets the flags written into a new post's front matter.
type NewPostOptions struct {
	Layout            string
	Comments          bool
	GitHub            string
	CrosspostToMedium bool
	Tags              []string
}

// newFrontMatter is the block NewPostFile writes, in this key order.
type newFrontMatter struct {
	Layout            string   `yaml:"layout"`
	Title             string   `yaml:"title"`
	Comments          bool     `yaml:"comments"`
	GitHub            string   `yaml:"github,omitempty"`
	CrosspostToMedium bool     `yaml:"crosspost_to_medium,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
}

// NewPostFile writes a new post skeleton into dir/_posts and returns its path.
// It refuses to overwrite an existing file.
func NewPostFile(dir, title string, date time.Time, opts NewPostOptions) (string, error) {
	title = strings.TrimSpace(title)
	s := Slugify(title)
	if s == "" {
		return "", fmt.Errorf("%w: title %q yields an empty slug", ErrBadFilename, title)
	}
	github := strings.TrimSpace(opts.GitHub)
	if err := CheckGitHubURL(github); err != nil {
		return "", err
	}
	layout := strings.TrimSpace(opts.Layout)
	if layout == "" {
		layout = DefaultLayout
	}
	fm, err := yaml.Marshal(newFrontMatter{
		Layout:            layout,
		Title:             title,
		Comments:          opts.Comments,
		GitHub:            github,
		CrosspostToMedium: opts.CrosspostToMedium,
		Tags:              opts.Tags,
	})
	if err != nil {
		return "", fmt.Errorf("content: encode front matter: %w", err)
	}

	postsDir := filepath.Join(dir, PostsDir)
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(postsDir, PostFilename(date, s))

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
