package render

import (
	"github.com/matzehuels/nbenv/pkg/notebook"
)

// UnsupportedText is the placeholder shown for cells of an unknown type.
const UnsupportedText = "Unsupported cell type"

// Kind tags a rendered cell.
type Kind string

const (
	KindMarkdown    Kind = "markdown"
	KindCode        Kind = "code"
	KindUnsupported Kind = "unsupported"
)

// Markdown converts markdown source to displayable markup.
type Markdown interface {
	Render(source string) (string, error)
}

// MarkdownFunc adapts a plain function to [Markdown].
type MarkdownFunc func(source string) (string, error)

// Render calls f(source).
func (f MarkdownFunc) Render(source string) (string, error) { return f(source) }

// Cell is one rendered notebook cell. Index is the cell's position in the
// document, which is its only identity.
type Cell struct {
	Index int  `json:"index"`
	Kind  Kind `json:"kind"`

	// Body is the rendered markdown for markdown cells.
	Body string `json:"body,omitempty"`

	// Source is the code of a code cell, displayed verbatim.
	Source         string   `json:"source,omitempty"`
	Outputs        []string `json:"outputs,omitempty"`
	ExecutionCount *int     `json:"execution_count,omitempty"`

	// Modules lists the top-level modules the cell imports. The renderer
	// leaves it empty; the pipeline fills it after extraction.
	Modules []string `json:"modules,omitempty"`

	// Reason is the placeholder text for unsupported or degraded cells.
	Reason string `json:"reason,omitempty"`
}

// IsPlaceholder reports whether the cell carries no rendered content.
func (c Cell) IsPlaceholder() bool { return c.Kind == KindUnsupported }

// Renderer renders decoded cells. With a nil Markdown, markdown cells keep
// their source as the body; the deps command runs this way since it only
// needs the manifest and never displays cell bodies.
type Renderer struct {
	Markdown Markdown
}

// NewRenderer returns a renderer using md for markdown cells.
func NewRenderer(md Markdown) *Renderer {
	return &Renderer{Markdown: md}
}

// Render renders cell at the given document index.
// The only error comes from the markdown collaborator.
func (r *Renderer) Render(cell notebook.Cell, index int) (Cell, error) {
	switch {
	case cell.IsMarkdown():
		body := cell.Source
		if r.Markdown != nil {
			var err error
			if body, err = r.Markdown.Render(cell.Source); err != nil {
				return Cell{}, err
			}
		}
		return Cell{Index: index, Kind: KindMarkdown, Body: body}, nil
	case cell.IsCode():
		return Cell{
			Index:          index,
			Kind:           KindCode,
			Source:         cell.Source,
			Outputs:        FormatOutputs(cell.Outputs),
			ExecutionCount: cell.ExecutionCount,
		}, nil
	default:
		return Cell{Index: index, Kind: KindUnsupported, Reason: UnsupportedText}, nil
	}
}

// Placeholder returns the degraded form of a cell that failed to decode or
// render. The reason is shown in place of the cell content.
func Placeholder(index int, reason string) Cell {
	if reason == "" {
		reason = UnsupportedText
	}
	return Cell{Index: index, Kind: KindUnsupported, Reason: reason}
}
