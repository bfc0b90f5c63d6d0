package postsite

import (
	"context"
	"fmt"

	"github.com/eringen/postsite/content"
	"github.com/eringen/postsite/crosspost"
)

// Crosspost sends every published post flagged crosspost_to_medium to Medium
// once, recording what was sent in the index database.
func Crosspost(ctx context.Context, cfg SiteConfig, log Logger, dryRun bool) (crosspost.Result, error) {
	if err := cfg.Validate(); err != nil {
		return crosspost.Result{}, err
	}
	if cfg.Medium.Token == "" && !dryRun {
		return crosspost.Result{}, fmt.Errorf("postsite: MEDIUM_TOKEN is required to crosspost")
	}
	posts, err := content.Load(ctx, cfg.Source, content.LoadOptions{})
	if err != nil {
		return crosspost.Result{}, err
	}
	var flagged []content.Post
	for _, p := range posts {
		if p.CrosspostToMedium && p.Published && !p.Draft {
			flagged = append(flagged, p)
		}
	}
	site, err := NewSite(cfg)
	if err != nil {
		return crosspost.Result{}, err
	}
	rendered, err := site.ViewAll(ctx, flagged)
	if err != nil {
		return crosspost.Result{}, err
	}
	items := make([]crosspost.Item, len(rendered))
	for i, v := range rendered {
		items[i] = crosspost.Item{
			Permalink:    v.Permalink,
			Title:        v.Title,
			HTML:         string(v.HTML),
			CanonicalURL: v.URL,
			Tags:         v.Tags,
			Eligible:     true,
		}
	}

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return crosspost.Result{}, fmt.Errorf("postsite: init store: %w", err)
	}
	defer store.Close()

	runner := &crosspost.Runner{
		Poster:        crosspost.NewClient(cfg.Medium.APIURL, cfg.Medium.Token),
		Ledger:        store,
		Log:           log,
		AuthorID:      cfg.Medium.AuthorID,
		PublishStatus: cfg.Medium.PublishStatus,
		License:       cfg.Medium.License,
		DryRun:        dryRun,
	}
	return runner.Run(ctx, items)
}
