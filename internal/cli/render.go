package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	runOpts
	output      string // HTML file, "-" for stdout
	pyscriptJS  string // PyScript runtime script URL
	pyscriptCSS string // PyScript stylesheet URL
}

// renderCommand creates the render command, which writes the notebook as a
// PyScript host page.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <notebook>",
		Short: "Render a notebook to an HTML page with a live Python environment",
		Long: `Render a notebook to a standalone HTML page.

Markdown cells are rendered to sanitized HTML. Code cells are shown with
their recorded outputs and handed to PyScript as editable REPL cells. The
page's py-env element lists the packages the notebook imports.`,
		Example: `  nbenv render analysis.ipynb
  nbenv render pandas -o pandas.html
  nbenv render https://example.com/nb.ipynb -o - > page.html`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNotebook,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <notebook>.html, - for stdout)")
	cmd.Flags().StringVar(&opts.pyscriptJS, "pyscript-js", render.DefaultPyScriptJS, "PyScript runtime URL")
	cmd.Flags().StringVar(&opts.pyscriptCSS, "pyscript-css", render.DefaultPyScriptCSS, "PyScript stylesheet URL")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, arg string, opts renderOpts) error {
	prog := newProgress(c.Logger)

	result, err := c.process(ctx, arg, render.NewHTMLMarkdown(), opts.runOpts)
	if err != nil {
		return err
	}

	page := result.Page()
	page.PyScriptJS = opts.pyscriptJS
	page.PyScriptCSS = opts.pyscriptCSS

	var buf bytes.Buffer
	if err := render.WritePage(&buf, page); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = outputName(result.Title(), ".html")
	}
	if err := writeOutput(output, buf.Bytes()); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	prog.done("Rendered " + result.Title())
	printSuccess("Rendered %d cells", result.Stats.Cells)
	printDegraded(result)
	printFile(output)
	return nil
}

// outputName derives an output file name from a notebook title.
func outputName(title, ext string) string {
	base := filepath.Base(title)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "notebook"
	}
	return base + ext
}
