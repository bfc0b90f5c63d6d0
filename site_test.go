package postsite

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const (
	springPost = `---
layout: post
title: "Spring Profiles"
comments: true
github: https://github.com/example/spring-profiles
crosspost_to_medium: true
tags: [java, spring]
---

Profiles let one build run in many environments.

` + "```java\n@Profile(\"dev\")\nclass DevConfig {}\n```\n"

	s3Post = `---
layout: post
title: "Hosting on S3"
tags: [aws]
---

A static site fits in a bucket.
`

	hiddenPost = `---
title: "Not yet"
published: false
---

Still writing this one.
`
)

// writeSite lays out a small site in a temp dir and returns its root.
func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func defaultSite(t *testing.T) string {
	return writeSite(t, map[string]string{
		"_config.yml": "title: Test Blog\nurl: https://blog.example.com\ndisqus_shortname: testblog\npaginate: 1\n",
		"_posts/2014-05-01-spring-profiles.md": springPost,
		"_posts/2014-06-02-s3-hosting.md":      s3Post,
		"_posts/2014-07-03-not-yet.md":         hiddenPost,
	})
}

func loadTestConfig(t *testing.T, dir string) SiteConfig {
	t.Helper()
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func pngOfWidth(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegOfWidth(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gifOfWidth(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
