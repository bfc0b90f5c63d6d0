package postsite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/postsite/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPost(slug string, day int, tags ...string) content.Post {
	date := time.Date(2014, 5, day, 0, 0, 0, 0, time.UTC)
	return content.Post{
		Path:      "_posts/" + content.PostFilename(date, slug),
		Slug:      slug,
		Date:      date,
		Title:     content.TitleFromSlug(slug),
		Layout:    content.DefaultLayout,
		Tags:      tags,
		Published: true,
		Permalink: content.DefaultPermalink(date, slug),
		Format:    content.FormatMarkdown,
		Body:      []byte("Body of " + slug + "\n"),
	}
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	post := testPost("jaxb-episodes", 1, "java", "xml")
	post.Comments = true
	post.GitHub = "https://github.com/example/jaxb"
	post.CrosspostToMedium = true
	post.Categories = []string{"java"}
	post.Summary = "Separate compilation."
	if err := s.SavePost(post); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	got, err := s.GetPost(post.Permalink)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != post.Title || got.Slug != post.Slug || !got.Date.Equal(post.Date) {
		t.Errorf("got %+v, want %+v", got, post)
	}
	if !got.Comments || !got.CrosspostToMedium || got.GitHub != post.GitHub {
		t.Errorf("flags not round-tripped: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "java" || got.Tags[1] != "xml" {
		t.Errorf("tags = %v", got.Tags)
	}
	if string(got.Body) != string(post.Body) || got.Format != content.FormatMarkdown {
		t.Errorf("body or format changed: %q %q", got.Body, got.Format)
	}
}

func TestSavePostUpdate(t *testing.T) {
	s := setupTestStore(t)
	post := testPost("s3-hosting", 2)
	if err := s.SavePost(post); err != nil {
		t.Fatal(err)
	}
	post.Title = "Updated"
	if err := s.SavePost(post); err != nil {
		t.Fatal(err)
	}
	all, err := s.ListAllPosts()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Title != "Updated" {
		t.Fatalf("expected one updated post, got %+v", all)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPost("/2014/05/01/missing/"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPostUnpublished(t *testing.T) {
	s := setupTestStore(t)
	post := testPost("hidden", 3)
	post.Published = false
	if err := s.SavePost(post); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPost(post.Permalink); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unpublished post should not be found, got %v", err)
	}
	all, err := s.ListAllPosts()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("ListAllPosts should include unpublished posts, got %d", len(all))
	}
}

func TestListPostsOrderAndTag(t *testing.T) {
	s := setupTestStore(t)
	for _, p := range []content.Post{
		testPost("spring-profiles", 1, "java", "spring"),
		testPost("s3-hosting", 9, "aws"),
		testPost("a-second", 9, "java"),
	} {
		if err := s.SavePost(p); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := s.ListPosts("")
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, p := range posts {
		order = append(order, p.Slug)
	}
	if want := []string{"a-second", "s3-hosting", "spring-profiles"}; !equalStrings(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	java, err := s.ListPosts("Java")
	if err != nil {
		t.Fatal(err)
	}
	if len(java) != 2 {
		t.Errorf("expected 2 java posts, got %d", len(java))
	}

	tags, err := s.ListTags()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"aws", "java", "spring"}; !equalStrings(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestSyncRemovesMissing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a, b := testPost("first", 1), testPost("second", 2)

	removed, err := s.Sync(ctx, []content.Post{a, b})
	if err != nil || removed != 0 {
		t.Fatalf("first sync: removed=%d err=%v", removed, err)
	}
	removed, err = s.Sync(ctx, []content.Post{b})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := s.GetPost(a.Permalink); !errors.Is(err, ErrNotFound) {
		t.Errorf("removed post still indexed: %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	post := testPost("gone", 4)
	if err := s.SavePost(post); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePost(post.Permalink); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPost(post.Permalink); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeletePost("/nope/"); err != nil {
		t.Fatalf("deleting a missing post should not fail: %v", err)
	}
}

func TestCrosspostLedger(t *testing.T) {
	s := setupTestStore(t)
	const link = "/2014/05/01/jaxb-episodes/"

	if _, ok, err := s.Crossposted(link); err != nil || ok {
		t.Fatalf("fresh ledger: ok=%v err=%v", ok, err)
	}
	if err := s.RecordCrosspost(link, "abc123", "https://medium.com/@me/jaxb-abc123"); err != nil {
		t.Fatal(err)
	}
	u, ok, err := s.Crossposted(link)
	if err != nil || !ok || u != "https://medium.com/@me/jaxb-abc123" {
		t.Fatalf("Crossposted = %q, %v, %v", u, ok, err)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{",go,web,", []string{"go", "web"}},
		{",", nil},
		{"", nil},
		{"a", []string{"a"}},
	}
	for _, tt := range tests {
		if got := ParseTags(tt.in); !equalStrings(got, tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if joinTags(nil) != "," || joinTags([]string{"a", "b"}) != ",a,b," {
		t.Errorf("joinTags encoding changed")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
