package postsite

import "embed"

// EmbeddedAssets contains the default stylesheet, used when the site's static
// dir does not provide its own site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
