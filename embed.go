package folio

import "embed"

// EmbeddedAssets holds the browser side of the site: folio.js (pointer
// socket, clipboard and scroll-lock glue) and folio.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
