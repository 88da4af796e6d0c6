package gofromts

import "embed"

// EmbeddedAssets contains the files shipped with the engine: the default
// stylesheet and the analytics tracking script.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

const (
	stylesheetAsset = "embedded/style.css"
	scriptAsset     = "embedded/script.js"
)
