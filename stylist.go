package sheet2png

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/alnah/go-sheet2png/internal/assets"
)

// Stylist wraps table markup in a standalone document with fixed CSS.
// Output depends only on the input markup and the construction arguments.
type Stylist struct {
	tmpl *template.Template
	css  string
}

type documentData struct {
	CSS  string
	Body string
}

// NewStylist builds a Stylist for a style variant. An empty variant selects
// "precise". extraCSS, if any, is appended after the variant CSS.
func NewStylist(variant, extraCSS string) (*Stylist, error) {
	if variant == "" {
		variant = assets.DefaultStyleName
	}

	loader := assets.NewEmbeddedLoader()

	css, err := loader.LoadStyle(strings.ToLower(variant))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrInvalidStyle, variant,
			strings.Join(loader.StyleNames(), ", "))
	}
	if extra := strings.TrimSpace(extraCSS); extra != "" {
		css += "\n" + sanitizeCSS(extra) + "\n"
	}

	src, err := loader.LoadTemplate(assets.DocumentTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	tmpl, err := template.New(assets.DocumentTemplate).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}

	return &Stylist{tmpl: tmpl, css: css}, nil
}

// Style embeds raw markup as-is. Empty or malformed fragments are not an error.
func (s *Stylist) Style(raw string) string {
	var b strings.Builder
	// Both fields are plain strings, so execution cannot fail.
	_ = s.tmpl.Execute(&b, documentData{CSS: s.css, Body: raw})
	return b.String()
}

// sanitizeCSS keeps user CSS from closing the <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
