// Package report writes a per-run index of exported sheet images as
// Markdown (index.md) and as HTML rendered from it with goldmark (index.html).
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// File names written into the output directory.
const (
	MarkdownFile = "index.md"
	HTMLFile     = "index.html"
)

// filePermissions matches the mode of exported images.
const filePermissions = 0o644

// ErrRender indicates the Markdown could not be rendered to HTML.
var ErrRender = errors.New("report rendering failed")

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 5px 8px; vertical-align: top; }
img { max-width: 480px; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Entry describes one sheet of the run.
type Entry struct {
	Sheet    string
	File     string // image file name relative to the report; empty on failure
	Err      string // failure reason; empty on success
	Duration time.Duration
}

// Report is the input for Markdown and Write.
type Report struct {
	Workbook  string
	Generated time.Time
	Total     int
	Succeeded int
	Entries   []Entry
}

// Markdown renders the report as a GFM document.
func Markdown(r Report) string {
	var b strings.Builder

	title := "Sheet export: " + filepath.Base(r.Workbook)
	fmt.Fprintf(&b, "# %s\n\n", escapeInline(title))
	fmt.Fprintf(&b, "- Workbook: `%s`\n", strings.ReplaceAll(r.Workbook, "`", "'"))
	if !r.Generated.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", r.Generated.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- Exported: %d/%d sheets\n\n", r.Succeeded, r.Total)

	if len(r.Entries) == 0 {
		b.WriteString("The workbook has no sheets.\n")
		return b.String()
	}

	b.WriteString("| # | Sheet | Image | Status |\n")
	b.WriteString("|---:|---|---|---|\n")
	for i, e := range r.Entries {
		sheet := escapeCell(e.Sheet)
		image := "-"
		status := "ok"
		if e.File != "" {
			image = fmt.Sprintf("![%s](<%s>)", sheet, e.File)
		}
		if e.Err != "" {
			status = "failed: " + escapeCell(e.Err)
		}
		if e.Duration > 0 {
			status += fmt.Sprintf(" (%s)", e.Duration.Round(time.Millisecond))
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, sheet, image, status)
	}

	return b.String()
}

// Renderer converts report Markdown to a standalone HTML page.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GFM tables. Raw HTML in the Markdown
// is not passed through.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
	}
}

// ToHTML renders markdown into an HTML document titled title.
func (r *Renderer) ToHTML(ctx context.Context, title, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return fmt.Sprintf(htmlTemplate, escapeHTML(title), buf.String()), nil
}

// Write renders rep and writes index.md and index.html into dir.
// It returns the paths written.
func Write(ctx context.Context, dir string, rep Report) (mdPath, htmlPath string, err error) {
	markdown := Markdown(rep)

	page, err := NewRenderer().ToHTML(ctx, "Sheet export: "+filepath.Base(rep.Workbook), markdown)
	if err != nil {
		return "", "", err
	}

	mdPath = filepath.Join(dir, MarkdownFile)
	if err := os.WriteFile(mdPath, []byte(markdown), filePermissions); err != nil { // #nosec G306 -- report sits next to shareable images
		return "", "", fmt.Errorf("writing %s: %w", MarkdownFile, err)
	}
	htmlPath = filepath.Join(dir, HTMLFile)
	if err := os.WriteFile(htmlPath, []byte(page), filePermissions); err != nil { // #nosec G306 -- report sits next to shareable images
		return "", "", fmt.Errorf("writing %s: %w", HTMLFile, err)
	}

	return mdPath, htmlPath, nil
}

var (
	cellEscaper   = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "", "<", "&lt;", ">", "&gt;", "[", `\[`, "]", `\]`)
	inlineEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "*", `\*`, "_", `\_`)
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// escapeCell makes text safe inside a GFM table cell.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
