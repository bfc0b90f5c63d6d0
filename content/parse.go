package content

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ParseOptions controls how a single file is turned into a Post.
type ParseOptions struct {
	// Draft marks the file as coming from the drafts directory; its date is
	// taken from ModTime instead of the filename.
	Draft   bool
	ModTime time.Time
}

// Parse reads a post from its path and raw bytes.
func Parse(filePath string, src []byte, opts ParseOptions) (Post, error) {
	p, err := parse(filePath, src, opts)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return p, nil
}

func parse(filePath string, src []byte, opts ParseOptions) (Post, error) {
	var (
		date   time.Time
		slug   string
		format Format
		err    error
	)
	if opts.Draft {
		slug, format, err = ParseDraftFilename(filePath)
		date = opts.ModTime
	} else {
		date, slug, format, err = ParseFilename(filePath)
	}
	if err != nil {
		return Post{}, err
	}

	fm, body, err := ParseFrontMatter(src)
	if err != nil {
		return Post{}, err
	}
	if override, err := fm.ParseDate(); err != nil {
		return Post{}, err
	} else if !override.IsZero() {
		date = override
	}

	github := strings.TrimSpace(fm.GitHub)
	if err := CheckGitHubURL(github); err != nil {
		return Post{}, err
	}

	permalink := DefaultPermalink(date, slug)
	if fm.Permalink != "" {
		permalink, err = cleanPermalink(fm.Permalink)
		if err != nil {
			return Post{}, err
		}
	}

	layout := strings.TrimSpace(fm.Layout)
	if layout == "" {
		layout = DefaultLayout
	}
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = TitleFromSlug(slug)
	}

	var tags []string
	for _, t := range fm.TagList() {
		if t = NormalizeTag(t); t != "" {
			tags = append(tags, t)
		}
	}

	return Post{
		Path:              filePath,
		Slug:              slug,
		Date:              date,
		Title:             title,
		Layout:            layout,
		Comments:          fm.Comments,
		GitHub:            github,
		CrosspostToMedium: fm.CrosspostToMedium,
		Tags:              tags,
		Categories:        fm.CategoryList(),
		Summary:           fm.SummaryText(),
		Published:         fm.IsPublished(),
		Draft:             opts.Draft,
		Permalink:         permalink,
		Format:            format,
		Body:              body,
	}, nil
}

// CheckGitHubURL accepts an empty value or an absolute http(s) URL.
func CheckGitHubURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: github %q is not an http(s) URL", ErrBadFrontMatter, raw)
	}
	return nil
}

func cleanPermalink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.ContainsAny(raw, "?#") {
		return "", fmt.Errorf("%w: permalink %q must be an absolute path", ErrBadFrontMatter, raw)
	}
	p := path.Clean(raw)
	if p == "/" {
		return "", fmt.Errorf("%w: permalink %q collides with the index", ErrBadFrontMatter, raw)
	}
	return p + "/", nil
}

// TitleFromSlug turns "spring-profiles" into "Spring Profiles".
func TitleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
