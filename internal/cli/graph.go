package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/render/nodelink"
)

const (
	graphSVG = "svg"
	graphDOT = "dot"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	runOpts
	output   string // output file, "-" for stdout
	format   string // svg or dot, default from the output extension
	detailed bool   // add the first source line to cell labels
}

// graphCommand creates the graph command, which draws which cells import
// which modules.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <notebook>",
		Short: "Draw the cell to module import graph",
		Example: `  nbenv graph analysis.ipynb
  nbenv graph analysis.ipynb -o imports.dot
  nbenv graph pandas --detailed -o - --format dot | dot -Tpng > g.png`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNotebook,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := graphFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <notebook>.svg, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show the first source line of each cell")

	return cmd
}

// graphFormat picks the output format from the flag or the file extension.
func graphFormat(flag, output string) (string, error) {
	switch flag {
	case graphSVG, graphDOT:
		return flag, nil
	case "":
		if strings.EqualFold(filepath.Ext(output), ".dot") {
			return graphDOT, nil
		}
		return graphSVG, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", flag)
}

func (c *CLI) runGraph(ctx context.Context, arg string, opts graphOpts) error {
	result, err := c.process(ctx, arg, nil, opts.runOpts)
	if err != nil {
		return err
	}

	dot := nodelink.ToDOT(result.Cells, nodelink.Options{Detailed: opts.detailed})
	data := []byte(dot)
	if opts.format == graphSVG {
		if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return err
		}
	}

	output := opts.output
	if output == "" {
		output = outputName(result.Title(), "."+opts.format)
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Graph of %d packages", result.Manifest.Len())
		printFile(output)
	}
	return nil
}
