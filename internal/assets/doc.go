// Package assets embeds the CSS variants and the document template used to
// turn converter table markup into a standalone page for capture.
//
// Directory structure:
//
//	styles/
//	├── precise.css     # default: no wrapping inside cells
//	└── standard.css    # cells may wrap
//	templates/
//	└── document.html   # text/template with .CSS and .Body
//
// Asset names are validated to prevent path traversal into the embedded
// filesystem.
package assets
