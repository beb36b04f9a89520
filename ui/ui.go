package ui

import "embed"

// Files holds the chat widget served under /ui.
//
//go:embed index.html
var Files embed.FS
