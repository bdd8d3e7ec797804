// Package web embeds the static assets for the single page app.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
