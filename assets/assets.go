// Package assets bundles static files shipped with the bot.
package assets

import _ "embed"

// Thumbnail is the placeholder artwork attached to panel messages when no
// artwork could be resolved for the current track.
//
//go:embed thumbnail.png
var Thumbnail []byte

const ThumbnailName = "thumbnail.png"
