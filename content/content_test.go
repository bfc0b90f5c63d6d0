package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const samplePost = `---
layout: post
title: "Spring profiles without XML"
comments: true
github: https://github.com/example/spring-profiles
crosspost_to_medium: true
tags: [Java, Spring Boot]
categories: java spring
---

Some **intro** text.

` + "```java\nclass A {}\n```\n"

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		date    string
		format  Format
		wantErr bool
	}{
		{name: "2014-05-01-jaxb-episode-files.md", slug: "jaxb-episode-files", date: "2014-05-01", format: FormatMarkdown},
		{name: "_posts/2016-11-20-s3-static-site.markdown", slug: "s3-static-site", date: "2016-11-20", format: FormatMarkdown},
		{name: "2015-01-02-Hello-World.html", slug: "hello-world", date: "2015-01-02", format: FormatHTML},
		{name: "2015-02-30-bad-date.md", wantErr: true},
		{name: "2015-01-02-.md", wantErr: true},
		{name: "no-date-here.md", wantErr: true},
		{name: "2015-01-02-under_score.md", wantErr: true},
		{name: "2015-01-02-post.txt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, slug, format, err := ParseFilename(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrBadFilename) {
					t.Fatalf("err = %v, want ErrBadFilename", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if slug != tt.slug {
				t.Errorf("slug = %q, want %q", slug, tt.slug)
			}
			if got := date.Format("2006-01-02"); got != tt.date {
				t.Errorf("date = %q, want %q", got, tt.date)
			}
			if format != tt.format {
				t.Errorf("format = %q, want %q", format, tt.format)
			}
		})
	}
}

func TestParseFrontMatterMissing(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("# just a heading\n"))
	if !errors.Is(err, ErrNoFrontMatter) {
		t.Fatalf("err = %v, want ErrNoFrontMatter", err)
	}
}

func TestParseFrontMatterMalformed(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	if !errors.Is(err, ErrBadFrontMatter) {
		t.Fatalf("err = %v, want ErrBadFrontMatter", err)
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("_posts/2019-03-04-spring-profiles.md", []byte(samplePost), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "Spring profiles without XML" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Layout != "post" {
		t.Errorf("Layout = %q", p.Layout)
	}
	if !p.Comments || !p.CrosspostToMedium {
		t.Errorf("flags = comments:%v crosspost:%v, want both true", p.Comments, p.CrosspostToMedium)
	}
	if p.GitHub != "https://github.com/example/spring-profiles" {
		t.Errorf("GitHub = %q", p.GitHub)
	}
	if p.Permalink != "/2019/03/04/spring-profiles/" {
		t.Errorf("Permalink = %q", p.Permalink)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "java" || p.Tags[1] != "spring-boot" {
		t.Errorf("Tags = %v, want [java spring-boot]", p.Tags)
	}
	if len(p.Categories) != 2 || p.Categories[0] != "java" {
		t.Errorf("Categories = %v", p.Categories)
	}
	if !p.Published {
		t.Error("Published should default to true")
	}
	if !strings.Contains(string(p.Body), "```java") {
		t.Errorf("Body lost the fenced block: %q", p.Body)
	}
	if strings.Contains(string(p.Body), "layout:") {
		t.Errorf("Body still contains front matter: %q", p.Body)
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse("2020-01-02-aws-cloudfront-setup.md", []byte("---\ncomments: false\n---\nBody\n"), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Layout != DefaultLayout {
		t.Errorf("Layout = %q, want %q", p.Layout, DefaultLayout)
	}
	if p.Title != "Aws Cloudfront Setup" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Comments || p.CrosspostToMedium || p.GitHub != "" {
		t.Errorf("unexpected flags set: %+v", p)
	}
}

func TestParseOverrides(t *testing.T) {
	src := "---\ndate: 2020-01-03 10:30:00\npermalink: /aws/hosting\npublished: false\n---\n"
	p, err := Parse("2020-01-02-hosting.md", []byte(src), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Date.Format("2006-01-02 15:04"); got != "2020-01-03 10:30" {
		t.Errorf("Date = %q", got)
	}
	if p.Permalink != "/aws/hosting/" {
		t.Errorf("Permalink = %q", p.Permalink)
	}
	if p.Published {
		t.Error("Published should be false")
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"github":    "---\ngithub: not a url\n---\n",
		"date":      "---\ndate: yesterday\n---\n",
		"permalink": "---\npermalink: relative/path\n---\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("2020-01-02-post.md", []byte(src), ParseOptions{})
			if !errors.Is(err, ErrBadFrontMatter) {
				t.Fatalf("err = %v, want ErrBadFrontMatter", err)
			}
			if !strings.Contains(err.Error(), "2020-01-02-post.md") {
				t.Errorf("error %q does not name the file", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PostsDir, "2019-03-04-spring-profiles.md"), samplePost)
	writeFile(t, filepath.Join(dir, PostsDir, "java", "2014-05-01-jaxb-episodes.md"), "---\ntitle: JAXB episodes\n---\nbody\n")
	writeFile(t, filepath.Join(dir, PostsDir, "2016-11-20-s3-hosting.html"), "---\ntitle: S3\n---\n<p>hi</p>\n")
	writeFile(t, filepath.Join(dir, PostsDir, "2016-11-21-hidden.md"), "---\npublished: false\n---\n")
	writeFile(t, filepath.Join(dir, PostsDir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, DraftsDir, "work-in-progress.md"), "---\ntitle: WIP\n---\n")

	posts, err := Load(context.Background(), dir, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var slugs []string
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	if got := strings.Join(slugs, ","); got != "spring-profiles,s3-hosting,jaxb-episodes" {
		t.Errorf("order = %s", got)
	}

	all, err := Load(context.Background(), dir, LoadOptions{IncludeDrafts: true, IncludeUnpublished: true})
	if err != nil {
		t.Fatalf("Load all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	var draft *Post
	for i := range all {
		if all[i].Draft {
			draft = &all[i]
		}
	}
	if draft == nil || draft.Slug != "work-in-progress" || draft.Date.IsZero() {
		t.Errorf("draft not loaded with a date: %+v", draft)
	}
}

func TestLoadMissingDir(t *testing.T) {
	posts, err := Load(context.Background(), t.TempDir(), LoadOptions{IncludeDrafts: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("len = %d, want 0", len(posts))
	}
}

func TestLoadReportsEveryBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PostsDir, "2019-01-01-ok.md"), "---\nlayout: post\n---\n")
	writeFile(t, filepath.Join(dir, PostsDir, "2019-01-02-no-front-matter.md"), "plain\n")
	writeFile(t, filepath.Join(dir, PostsDir, "badname.md"), "---\nlayout: post\n---\n")

	_, err := Load(context.Background(), dir, LoadOptions{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrNoFrontMatter) || !errors.Is(err, ErrBadFilename) {
		t.Errorf("err = %v, want both ErrNoFrontMatter and ErrBadFilename", err)
	}
}

func TestLoadDuplicatePermalink(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PostsDir, "2019-01-01-a.md"), "---\npermalink: /same/\n---\n")
	writeFile(t, filepath.Join(dir, PostsDir, "2019-01-02-b.md"), "---\npermalink: /same\n---\n")

	_, err := Load(context.Background(), dir, LoadOptions{})
	if !errors.Is(err, ErrDuplicatePermalink) {
		t.Fatalf("err = %v, want ErrDuplicatePermalink", err)
	}
}

func TestNewPostFile(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	path, err := NewPostFile(dir, "Hosting a site on S3", date, NewPostOptions{Comments: true, CrosspostToMedium: true})
	if err != nil {
		t.Fatalf("NewPostFile: %v", err)
	}
	if filepath.Base(path) != "2026-10-14-hosting-a-site-on-s3.md" {
		t.Errorf("path = %s", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Parse(path, src, ParseOptions{})
	if err != nil {
		t.Fatalf("generated post does not parse: %v", err)
	}
	if p.Title != "Hosting a site on S3" || !p.Comments || !p.CrosspostToMedium {
		t.Errorf("generated post = %+v", p)
	}

	if _, err := NewPostFile(dir, "Hosting a site on S3", date, NewPostOptions{}); !errors.Is(err, os.ErrExist) {
		t.Errorf("second create err = %v, want ErrExist", err)
	}
}

func TestNewPostFileQuotesValues(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2015, 2, 3, 0, 0, 0, 0, time.UTC)
	title := "C++: a tour #1"
	tags := []string{"c++", "a: b", "x, y", "#hash"}
	path, err := NewPostFile(dir, title, date, NewPostOptions{
		GitHub: "https://github.com/example/tour?tab=readme#top",
		Tags:   tags,
	})
	if err != nil {
		t.Fatalf("NewPostFile: %v", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Parse(path, src, ParseOptions{})
	if err != nil {
		t.Fatalf("generated post does not parse: %v\n%s", err, src)
	}
	if p.Title != title {
		t.Errorf("title = %q, want %q", p.Title, title)
	}
	if p.GitHub != "https://github.com/example/tour?tab=readme#top" {
		t.Errorf("github = %q", p.GitHub)
	}
	for _, tag := range tags {
		if !p.HasTag(tag) {
			t.Errorf("tag %q lost; got %v", tag, p.Tags)
		}
	}
	if _, err := Load(context.Background(), dir, LoadOptions{}); err != nil {
		t.Errorf("Load after NewPostFile: %v", err)
	}
}

func TestNewPostFileRejectsBadGitHub(t *testing.T) {
	dir := t.TempDir()
	_, err := NewPostFile(dir, "Broken link", time.Now(), NewPostOptions{GitHub: "github.com/example"})
	if !errors.Is(err, ErrBadFrontMatter) {
		t.Fatalf("err = %v, want ErrBadFrontMatter", err)
	}
	if entries, _ := os.ReadDir(filepath.Join(dir, PostsDir)); len(entries) != 0 {
		t.Errorf("a file was written for a rejected post: %v", entries)
	}
}

func TestParseFrontMatterBOM(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("\ufeff---\ntitle: Saved on Windows\n---\n\nbody\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Saved on Windows" || !strings.Contains(string(body), "body") {
		t.Errorf("fm = %+v, body = %q", fm, body)
	}
}

func TestParseScalarTags(t *testing.T) {
	src := "---\ntitle: One tag\ntags: spring boot\n---\n\nbody\n"
	p, err := Parse("_posts/2014-05-01-one-tag.md", []byte(src), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "spring" || p.Tags[1] != "boot" {
		t.Errorf("tags = %v", p.Tags)
	}
}

func TestPaginate(t *testing.T) {
	posts := make([]Post, 5)
	pages := Paginate(posts, 2)
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	if pages[0].Prev != 0 || pages[0].Next != 2 {
		t.Errorf("first page links = %d/%d", pages[0].Prev, pages[0].Next)
	}
	if len(pages[2].Posts) != 1 || pages[2].Next != 0 || pages[2].Prev != 2 {
		t.Errorf("last page = %+v", pages[2])
	}
	if empty := Paginate(nil, 10); len(empty) != 1 || empty[0].Total != 1 {
		t.Errorf("empty paginate = %+v", empty)
	}
	if PagePath(1) != "/" || PagePath(3) != "/page/3/" {
		t.Errorf("PagePath = %q, %q", PagePath(1), PagePath(3))
	}
}

func TestTags(t *testing.T) {
	posts := []Post{
		{Tags: []string{"java", "spring"}},
		{Tags: []string{"aws", "java"}},
	}
	got := Tags(posts)
	if strings.Join(got, ",") != "aws,java,spring" {
		t.Errorf("Tags = %v", got)
	}
	if n := len(FilterTag(posts, "Java")); n != 2 {
		t.Errorf("FilterTag(Java) = %d, want 2", n)
	}
	if TagPath("Spring Boot") != "/tags/spring-boot/" {
		t.Errorf("TagPath = %q", TagPath("Spring Boot"))
	}
}
