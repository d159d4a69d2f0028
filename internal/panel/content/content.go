// Package content renders the static documents served by the panel.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed terms.md
var termsSource []byte

var (
	termsOnce sync.Once
	termsHTML template.HTML
	termsErr  error
)

// Terms returns the seller terms document as sanitised HTML.
func Terms() (template.HTML, error) {
	termsOnce.Do(func() {
		termsHTML, termsErr = Render(termsSource)
	})
	return termsHTML, termsErr
}

// Render converts markdown to HTML and strips anything outside the UGC policy.
func Render(src []byte) (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("content: render markdown: %w", err)
	}
	clean := bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes())
	return template.HTML(clean), nil
}
