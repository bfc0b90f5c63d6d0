package postsite

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/postsite/views"
)

// ConfigFile is the site configuration file looked up in the source directory.
const ConfigFile = "_config.yml"

// SiteConfig holds all configuration for a postsite site.
type SiteConfig struct {
	Name        string `yaml:"title"`       // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:4000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD
	Disqus      string `yaml:"disqus_shortname"`

	Paginate      int `yaml:"paginate"`       // Posts per index page (default 10)
	FeedLimit     int `yaml:"feed_limit"`     // Posts in feed.xml (default 20)
	ExcerptLength int `yaml:"excerpt_length"` // Excerpt runes (default 200)

	Source        string `yaml:"source"`          // Site root holding _posts (default ".")
	Destination   string `yaml:"destination"`     // Build output (default "_site")
	StaticDir     string `yaml:"static_dir"`      // Assets served under /public (default "public")
	ImageMaxWidth int    `yaml:"image_max_width"` // Wider images are scaled down (default 800)
	ShowDrafts    bool   `yaml:"show_drafts"`     // Include _drafts in builds and previews

	Addr         string        `yaml:"addr"`      // Preview listen address (default ":4000")
	DatabasePath string        `yaml:"database"`  // SQLite index path (default "data/postsite.db")
	PostCacheTTL time.Duration `yaml:"cache_ttl"` // Post cache TTL (default 5min)

	AdminPassword string `yaml:"-"` // ADMIN_PASSWORD; admin area is off when empty
	SessionSecret string `yaml:"-"` // SESSION_SECRET; required with AdminPassword
	CookieSecure  bool   `yaml:"cookie_secure"`

	Medium MediumConfig `yaml:"medium"`
}

// MediumConfig configures crossposting of posts flagged crosspost_to_medium.
type MediumConfig struct {
	Token         string `yaml:"-"` // MEDIUM_TOKEN
	AuthorID      string `yaml:"author_id"`
	PublishStatus string `yaml:"publish_status"` // public, draft or unlisted (default "public")
	License       string `yaml:"license"`
	APIURL        string `yaml:"api_url"` // default https://api.medium.com/v1
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:4000"
	}
	if c.Paginate == 0 {
		c.Paginate = 10
	}
	if c.FeedLimit == 0 {
		c.FeedLimit = 20
	}
	if c.ExcerptLength == 0 {
		c.ExcerptLength = 200
	}
	if c.Source == "" {
		c.Source = "."
	}
	if c.Destination == "" {
		c.Destination = "_site"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.ImageMaxWidth == 0 {
		c.ImageMaxWidth = 800
	}
	if c.Addr == "" {
		c.Addr = ":4000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/postsite.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.Medium.PublishStatus == "" {
		c.Medium.PublishStatus = "public"
	}
	if c.Medium.APIURL == "" {
		c.Medium.APIURL = "https://api.medium.com/v1"
	}
}

// LoadConfig reads source/_config.yml when present, applies environment
// overrides and fills in defaults. Relative destination, static and database
// paths are resolved against source.
func LoadConfig(source string) (SiteConfig, error) {
	var cfg SiteConfig
	data, err := os.ReadFile(filepath.Join(source, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("postsite: parse %s: %w", ConfigFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return SiteConfig{}, fmt.Errorf("postsite: read %s: %w", ConfigFile, err)
	}
	if cfg.Source == "" {
		cfg.Source = source
	}
	cfg.applyEnv()
	cfg.setDefaults()
	cfg.Destination = resolve(cfg.Source, cfg.Destination)
	cfg.StaticDir = resolve(cfg.Source, cfg.StaticDir)
	cfg.DatabasePath = resolve(cfg.Source, cfg.DatabasePath)
	return cfg, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func (c *SiteConfig) applyEnv() {
	c.Name = EnvOr("POSTSITE_TITLE", c.Name)
	c.URL = EnvOr("POSTSITE_URL", c.URL)
	c.Destination = EnvOr("POSTSITE_DESTINATION", c.Destination)
	c.Addr = EnvOr("POSTSITE_ADDR", c.Addr)
	c.DatabasePath = EnvOr("POSTSITE_DATABASE", c.DatabasePath)
	c.AdminPassword = EnvOr("ADMIN_PASSWORD", c.AdminPassword)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	c.Medium.Token = EnvOr("MEDIUM_TOKEN", c.Medium.Token)
	c.Medium.AuthorID = EnvOr("MEDIUM_AUTHOR_ID", c.Medium.AuthorID)
	if v, err := strconv.ParseBool(os.Getenv("COOKIE_SECURE")); err == nil {
		c.CookieSecure = v
	}
	if v, err := strconv.ParseBool(os.Getenv("POSTSITE_DRAFTS")); err == nil {
		c.ShowDrafts = v
	}
}

// Validate reports configuration values that would produce a broken site.
func (c SiteConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("postsite: url %q must be absolute", c.URL)
	}
	if c.Paginate < 1 {
		return fmt.Errorf("postsite: paginate must be at least 1, got %d", c.Paginate)
	}
	if c.FeedLimit < 1 {
		return fmt.Errorf("postsite: feed_limit must be at least 1, got %d", c.FeedLimit)
	}
	if c.AdminPassword != "" && c.SessionSecret == "" {
		return fmt.Errorf("postsite: SESSION_SECRET is required when ADMIN_PASSWORD is set")
	}
	switch c.Medium.PublishStatus {
	case "public", "draft", "unlisted":
	default:
		return fmt.Errorf("postsite: medium publish_status %q must be public, draft or unlisted", c.Medium.PublishStatus)
	}
	return nil
}

// LayoutsDir is where site-specific layouts live.
func (c SiteConfig) LayoutsDir() string {
	return filepath.Join(c.Source, "_layouts")
}

func (c SiteConfig) viewsConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		Disqus:      c.Disqus,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default logger.
func WithLogger(l Logger) Option {
	return func(a *App) {
		a.log = l
	}
}
