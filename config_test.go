package postsite

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Blog" || cfg.Paginate != 10 || cfg.FeedLimit != 20 || cfg.ImageMaxWidth != 800 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.PostCacheTTL != 5*time.Minute || cfg.Addr != ":4000" {
		t.Errorf("server defaults not applied: %+v", cfg)
	}
	if cfg.Destination != filepath.Join(dir, "_site") || cfg.DatabasePath != filepath.Join(dir, "data", "postsite.db") {
		t.Errorf("paths not resolved against source: %s %s", cfg.Destination, cfg.DatabasePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"_config.yml": "title: From File\nurl: https://file.example.com\npaginate: 3\ncache_ttl: 30s\nmedium:\n  publish_status: draft\n",
	})
	t.Setenv("POSTSITE_URL", "https://env.example.com")
	t.Setenv("MEDIUM_TOKEN", "tok")
	t.Setenv("POSTSITE_DRAFTS", "true")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "From File" || cfg.Paginate != 3 || cfg.PostCacheTTL != 30*time.Second {
		t.Errorf("file values not read: %+v", cfg)
	}
	if cfg.URL != "https://env.example.com" || cfg.Medium.Token != "tok" || !cfg.ShowDrafts {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Medium.PublishStatus != "draft" {
		t.Errorf("publish_status = %q", cfg.Medium.PublishStatus)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := writeSite(t, map[string]string{"_config.yml": "title: [unclosed\n"})
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected an error for malformed _config.yml")
	}
}

func TestValidate(t *testing.T) {
	base := SiteConfig{}
	base.setDefaults()

	tests := []struct {
		name   string
		modify func(*SiteConfig)
	}{
		{"relative url", func(c *SiteConfig) { c.URL = "/blog" }},
		{"zero paginate", func(c *SiteConfig) { c.Paginate = -1 }},
		{"zero feed limit", func(c *SiteConfig) { c.FeedLimit = -1 }},
		{"admin without secret", func(c *SiteConfig) { c.AdminPassword = "pw" }},
		{"bad publish status", func(c *SiteConfig) { c.Medium.PublishStatus = "everyone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected Validate to fail")
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://blog.example.com", nil, "https://blog.example.com/"},
		{"https://blog.example.com/", []string{"2014/05/01/jaxb"}, "https://blog.example.com/2014/05/01/jaxb/"},
		{"https://example.com/blog", []string{"tags", "java"}, "https://example.com/blog/tags/java/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"java", " ", "", " spring "})
	if !equalStrings(got, []string{"java", "spring"}) {
		t.Errorf("FilterEmpty = %v", got)
	}
}
