package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the decoded metadata block at the top of a post file.
type FrontMatter struct {
	Layout            string      `yaml:"layout"`
	Title             string      `yaml:"title"`
	Comments          bool        `yaml:"comments"`
	GitHub            string      `yaml:"github"`
	CrosspostToMedium bool        `yaml:"crosspost_to_medium"`
	Tags              interface{} `yaml:"tags"`
	Categories        interface{} `yaml:"categories"`
	Summary           string      `yaml:"summary"`
	Description       string      `yaml:"description"`
	Published         *bool       `yaml:"published"`
	Date              string      `yaml:"date"`
	Permalink         string      `yaml:"permalink"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// utf8BOM is what some editors put in front of the opening "---".
var utf8BOM = []byte("\ufeff")

// ParseFrontMatter splits src into its front matter and body. The front matter
// block is required.
func ParseFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	src = bytes.TrimPrefix(src, utf8BOM)
	body, err := frontmatter.MustParse(bytes.NewReader(src), &fm)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return FrontMatter{}, nil, ErrNoFrontMatter
		}
		return FrontMatter{}, nil, fmt.Errorf("%w: %v", ErrBadFrontMatter, err)
	}
	return fm, body, nil
}

// CategoryList returns categories whether they were written as a single
// space-separated string or as a list.
func (fm FrontMatter) CategoryList() []string {
	return stringList(fm.Categories)
}

// TagList returns tags written either way categories can be.
func (fm FrontMatter) TagList() []string {
	return stringList(fm.Tags)
}

func stringList(raw interface{}) []string {
	var out []string
	switch v := raw.(type) {
	case string:
		out = strings.Fields(v)
	case []interface{}:
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	}
	return out
}

// IsPublished defaults to true when the key is absent.
func (fm FrontMatter) IsPublished() bool {
	return fm.Published == nil || *fm.Published
}

// SummaryText prefers summary over description.
func (fm FrontMatter) SummaryText() string {
	if s := strings.TrimSpace(fm.Summary); s != "" {
		return s
	}
	return strings.TrimSpace(fm.Description)
}

// ParseDate reads the date key. It returns the zero time when the key is empty.
func (fm FrontMatter) ParseDate() (time.Time, error) {
	raw := strings.TrimSpace(fm.Date)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrBadFrontMatter, raw)
}
