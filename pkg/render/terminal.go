package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	termHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	termDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	termWarn   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("167"))
	termCode   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	termOutput = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(2)
)

// WriteTerminal writes the cells as a terminal transcript. Markdown bodies
// are written as-is, so they should come from a terminal collaborator.
func WriteTerminal(w io.Writer, cells []Cell) error {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(cellHeader(c))
		b.WriteString("\n")

		switch c.Kind {
		case KindMarkdown:
			b.WriteString(c.Body)
			b.WriteString("\n")
		case KindCode:
			b.WriteString(termCode.Render(strings.TrimRight(c.Source, "\n")))
			b.WriteString("\n")
			for _, out := range c.Outputs {
				b.WriteString(termOutput.Render(strings.TrimRight(out, "\n")))
				b.WriteString("\n")
			}
		default:
			b.WriteString(termWarn.Render(c.Reason))
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func cellHeader(c Cell) string {
	label := fmt.Sprintf("[%d] %s", c.Index, c.Kind)
	var extra []string
	if c.ExecutionCount != nil {
		extra = append(extra, fmt.Sprintf("In [%d]", *c.ExecutionCount))
	}
	if len(c.Modules) > 0 {
		extra = append(extra, "imports "+strings.Join(c.Modules, ", "))
	}
	if len(extra) == 0 {
		return termHeader.Render(label)
	}
	return termHeader.Render(label) + " " + termDim.Render(strings.Join(extra, " · "))
}
