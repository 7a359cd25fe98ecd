package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/render"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	runOpts
	style string // glamour style name, empty for auto
	width int    // word wrap width
}

// viewCommand creates the view command, which prints a notebook to the
// terminal.
func (c *CLI) viewCommand() *cobra.Command {
	opts := viewOpts{width: 80}

	cmd := &cobra.Command{
		Use:               "view <notebook>",
		Short:             "Print a notebook to the terminal",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNotebook,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.style, "style", "", "markdown style: dark, light, notty, ascii (default: auto)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "wrap markdown at this width")

	return cmd
}

func (c *CLI) runView(ctx context.Context, arg string, opts viewOpts, w io.Writer) error {
	md, err := render.NewTerminalMarkdown(opts.style, opts.width)
	if err != nil {
		return err
	}

	result, err := c.process(ctx, arg, md, opts.runOpts)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, StyleTitle.Render(result.Title()))
	fmt.Fprintln(w)
	if err := render.WriteTerminal(w, result.Cells); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Environment"))
	if env := manifest.PyEnv(result.Manifest); env != "" {
		fmt.Fprintln(w, StyleValue.Render(env))
	} else {
		fmt.Fprintln(w, StyleDim.Render("no imports"))
	}
	return nil
}
