package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nbenv/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the first line of each cell's source to its label.
	Detailed bool
}

// ToDOT converts rendered cells into Graphviz DOT. Every cell that
// contributed modules appears, including degraded code cells whose source
// was still scanned; module nodes are emitted in first-import order.
func ToDOT(cells []render.Cell, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	seen := make(map[string]bool)
	var modules []string
	for _, c := range cells {
		if len(c.Modules) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", cellID(c), fmtLabel(c, opts.Detailed))
		for _, m := range c.Modules {
			if !seen[m] {
				seen[m] = true
				modules = append(modules, m)
			}
		}
	}

	buf.WriteString("\n")
	for _, m := range modules {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, style=filled, fillcolor=lightyellow];\n", m)
	}

	buf.WriteString("\n")
	for _, c := range cells {
		for _, m := range c.Modules {
			fmt.Fprintf(&buf, "  %q -> %q;\n", cellID(c), m)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func cellID(c render.Cell) string { return fmt.Sprintf("cell %d", c.Index) }

func fmtLabel(c render.Cell, detailed bool) string {
	label := cellID(c)
	if c.IsPlaceholder() {
		return label + "\n(degraded)"
	}
	if c.ExecutionCount != nil {
		label = fmt.Sprintf("%s\nIn [%d]", label, *c.ExecutionCount)
	}
	if !detailed {
		return label
	}
	first, _, _ := strings.Cut(strings.TrimSpace(c.Source), "\n")
	if len(first) > 40 {
		first = first[:37] + "..."
	}
	return label + "\n" + first
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
