package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLMarkdown renders GitHub Flavored Markdown to sanitized HTML.
//
// Raw HTML in notebook markdown is common (tables, images, alignment divs),
// so goldmark passes it through and the bluemonday UGC policy strips
// scripts, event handlers and unsafe URLs afterwards.
type HTMLMarkdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var codeClassRE = regexp.MustCompile(`^language-[\w+-]+$`)

// NewHTMLMarkdown returns a markdown collaborator producing HTML.
func NewHTMLMarkdown() *HTMLMarkdown {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(codeClassRE).OnElements("code")

	return &HTMLMarkdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
	}
}

// Render converts markdown source to sanitized HTML.
func (h *HTMLMarkdown) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return h.policy.Sanitize(buf.String()), nil
}

// TerminalMarkdown renders markdown for display in a terminal.
type TerminalMarkdown struct {
	r *glamour.TermRenderer
}

// NewTerminalMarkdown returns a terminal collaborator. An empty style picks
// light or dark from the terminal background; width <= 0 uses 80 columns.
func NewTerminalMarkdown(style string, width int) (*TerminalMarkdown, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	return &TerminalMarkdown{r: r}, nil
}

// Render converts markdown source to styled terminal text.
func (t *TerminalMarkdown) Render(source string) (string, error) {
	out, err := t.r.Render(source)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
