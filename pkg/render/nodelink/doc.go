// Package nodelink renders the cell-to-module import graph as a node-link
// diagram.
//
// Code cells appear as boxes on the left, imported top-level modules as
// ellipses on the right, with an edge for every import a cell makes:
//
//	dot := nodelink.ToDOT(cells, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz] in-process, so no Graphviz
// installation is needed.
package nodelink
