// Package render turns decoded notebook cells into displayable cells.
//
// # Overview
//
// A [Renderer] maps each [notebook.Cell] to a [Cell]:
//
//   - markdown cells are passed through a [Markdown] collaborator and the
//     result becomes the cell body
//   - code cells keep their source as-is (it is never executed here) and get
//     one preformatted block per displayable output
//   - any other cell type becomes the fixed "Unsupported cell type" placeholder
//
// The renderer does not decide failure policy. A cell that cannot be decoded
// is turned into a placeholder by the caller with [Placeholder].
//
// # Markdown
//
// Two collaborators are provided. [HTMLMarkdown] converts markdown to HTML
// with goldmark (GitHub Flavored Markdown) and sanitizes it with bluemonday.
// [TerminalMarkdown] renders for a terminal with glamour.
//
// # Display
//
// [WritePage] writes a complete HTML document that hosts the notebook for
// PyScript: code cells are emitted as py-repl elements and the environment
// manifest as a py-env element. [WriteTerminal] writes a styled transcript.
//
// Cell-to-module diagrams live in the [nodelink] subpackage.
//
// [nodelink]: github.com/matzehuels/nbenv/pkg/render/nodelink
package render
