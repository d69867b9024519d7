// Package markdown renders post bodies and comments from Markdown to HTML as
// templ components. Raw HTML in the source is dropped and unsafe link
// schemes are blanked, so reader-supplied comments are safe to render.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	converter     goldmark.Markdown
	converterOnce sync.Once
)

func getConverter() goldmark.Markdown {
	converterOnce.Do(func() {
		converter = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return converter
}

// RenderHTML converts md to HTML. On a conversion error the source is
// returned escaped inside a paragraph.
func RenderHTML(md string) string {
	var buf bytes.Buffer
	if err := getConverter().Convert([]byte(md), &buf); err != nil {
		return "<p>" + html.EscapeString(md) + "</p>"
	}
	return buf.String()
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, RenderHTML(md))
		return err
	})
}
