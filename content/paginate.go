package content

import (
	"sort"
	"strconv"
)

// Page is one page of an index listing. Number starts at 1; Prev and Next are 0
// when there is no such page.
type Page struct {
	Number int
	Total  int
	Prev   int
	Next   int
	Posts  []Post
}

// Paginate splits posts into pages of perPage. An empty input still yields one
// empty page so the index always renders.
func Paginate(posts []Post, perPage int) []Page {
	if perPage < 1 {
		perPage = 1
	}
	total := (len(posts) + perPage - 1) / perPage
	if total == 0 {
		total = 1
	}
	pages := make([]Page, 0, total)
	for n := 1; n <= total; n++ {
		start := (n - 1) * perPage
		end := start + perPage
		if end > len(posts) {
			end = len(posts)
		}
		pg := Page{Number: n, Total: total, Posts: posts[start:end]}
		if n > 1 {
			pg.Prev = n - 1
		}
		if n < total {
			pg.Next = n + 1
		}
		pages = append(pages, pg)
	}
	return pages
}

// PagePath returns the URL path of index page n.
func PagePath(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/page/" + strconv.Itoa(n) + "/"
}

// Tags returns the sorted, deduplicated, lowercased tags across posts.
func Tags(posts []Post) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			if t = NormalizeTag(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FilterTag returns the posts that carry tag.
func FilterTag(posts []Post, tag string) []Post {
	var out []Post
	for _, p := range posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// TagPath returns the URL path of a tag listing.
func TagPath(tag string) string {
	return "/tags/" + NormalizeTag(tag) + "/"
}
