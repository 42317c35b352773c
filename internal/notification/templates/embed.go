package templates

import "embed"

// EmbeddedFS holds the embedded email templates.
//
//go:embed files/*.tmpl
var EmbeddedFS embed.FS
