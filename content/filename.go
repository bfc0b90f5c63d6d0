package content

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	rePostName  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)
	reSlugChars = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

var extFormats = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
}

// FormatFor returns the body format for a filename extension.
func FormatFor(name string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// ParseFilename splits a post filename like 2019-03-04-spring-profiles.md into
// its date, slug and format.
func ParseFilename(name string) (time.Time, string, Format, error) {
	base := filepath.Base(name)
	format, ok := FormatFor(base)
	if !ok {
		return time.Time{}, "", "", fmt.Errorf("%w: %s: unsupported extension", ErrBadFilename, base)
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	m := rePostName.FindStringSubmatch(stem)
	if m == nil {
		return time.Time{}, "", "", fmt.Errorf("%w: %s: want YYYY-MM-DD-title-slug", ErrBadFilename, base)
	}
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, "", "", fmt.Errorf("%w: %s: %v", ErrBadFilename, base, err)
	}
	slug := strings.ToLower(m[2])
	if !reSlugChars.MatchString(slug) {
		return time.Time{}, "", "", fmt.Errorf("%w: %s: slug %q must be lowercase letters, digits and dashes", ErrBadFilename, base, slug)
	}
	return date, slug, format, nil
}

// ParseDraftFilename reads a draft filename, which carries no date.
func ParseDraftFilename(name string) (string, Format, error) {
	base := filepath.Base(name)
	format, ok := FormatFor(base)
	if !ok {
		return "", "", fmt.Errorf("%w: %s: unsupported extension", ErrBadFilename, base)
	}
	slug := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	if !reSlugChars.MatchString(slug) {
		return "", "", fmt.Errorf("%w: %s: slug %q must be lowercase letters, digits and dashes", ErrBadFilename, base, slug)
	}
	return slug, format, nil
}

// PostFilename builds the filename for a post dated date with the given slug.
func PostFilename(date time.Time, slug string) string {
	return date.Format("2006-01-02") + "-" + slug + ".md"
}
