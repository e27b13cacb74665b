package static

import "embed"

// IndexTemplate is the name of the landing page template inside FS.
const IndexTemplate = "index.html.tmpl"

// FS contains the embedded page templates.
//
//go:embed index.html.tmpl
var FS embed.FS
