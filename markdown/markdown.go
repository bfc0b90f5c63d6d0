// Package markdown renders post bodies to HTML with goldmark and extracts
// plain-text excerpts.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/eringen/postsite/content"
)

// Renderer converts post bodies to HTML. A Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GFM, heading IDs and raw HTML passthrough. Posts
// mix Markdown with inline HTML, so raw HTML is kept.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(codeBlockRenderer{}, 100)),
			),
		),
	}
}

var defaultRenderer = New()

// Convert renders Markdown source to HTML.
func (r *Renderer) Convert(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Render returns the HTML body of a post. HTML posts pass through unchanged.
func (r *Renderer) Render(p content.Post) (template.HTML, error) {
	if p.Format == content.FormatHTML {
		return template.HTML(p.Body), nil
	}
	out, err := r.Convert(p.Body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Path, err)
	}
	return out, nil
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := defaultRenderer.Convert([]byte(md))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, string(out))
		return err
	})
}

// codeBlockRenderer wraps fenced code blocks that carry a language hint in a
// badge wrapper so layouts can label and highlight them.
type codeBlockRenderer struct{}

func (codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, renderFencedCodeBlock)
}

func renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := stdhtml.EscapeString(string(n.Language(source)))
	if lang != "" {
		_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + lang + `">` + lang + `</span>`)
		_, _ = w.WriteString(`<pre class="code-block"><code class="language-` + lang + `">`)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.WriteString(stdhtml.EscapeString(string(seg.Value(source))))
	}
	_, _ = w.WriteString("</code></pre>")
	if lang != "" {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

var strict = bluemonday.StrictPolicy()

// Excerpt strips markup from rendered HTML and returns at most n runes of text,
// cut at a word boundary. A cut excerpt ends with an ellipsis.
func Excerpt(rendered string, n int) string {
	text := stdhtml.UnescapeString(strict.Sanitize(rendered))
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// FirstParagraph returns the HTML up to the end of the first paragraph, or ""
// when there is none.
func FirstParagraph(rendered string) string {
	start := strings.Index(rendered, "<p>")
	if start < 0 {
		return ""
	}
	end := strings.Index(rendered[start:], "</p>")
	if end < 0 {
		return ""
	}
	return rendered[start : start+end+len("</p>")]
}
