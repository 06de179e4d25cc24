package page

import (
	"bytes"
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-crudform/pkg/surface"
)

// MarkdownPage shows a static Markdown document, such as a readme on the
// home section. The document is converted and sanitised once.
type MarkdownPage struct {
	title string
	html  string
}

// NewMarkdownPage converts source to sanitised HTML. An empty title skips the
// heading.
func NewMarkdownPage(title string, source []byte) (*MarkdownPage, error) {
	engine := goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
	)
	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("page: markdown: %w", err)
	}
	policy := bluemonday.UGCPolicy()
	return &MarkdownPage{
		title: title,
		html:  policy.Sanitize(buf.String()),
	}, nil
}

// HTML returns the sanitised markup.
func (p *MarkdownPage) HTML() string { return p.html }

func (p *MarkdownPage) Render(_ context.Context, s surface.Surface) error {
	if p.title != "" {
		s.Title(p.title)
	}
	s.HTML(p.html)
	return nil
}
