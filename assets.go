// Package interviewui embeds the UI's templates and static files. Dev mode
// reads frontend/ from disk instead.
package interviewui

import "embed"

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
