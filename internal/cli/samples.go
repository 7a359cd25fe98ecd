package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/source"
)

// samplesCommand creates the samples command.
func (c *CLI) samplesCommand() *cobra.Command {
	var (
		pick bool
		opts depsOpts
	)

	cmd := &cobra.Command{
		Use:   "samples",
		Short: "List the sample notebooks",
		Long: `List the sample notebooks that can be passed by name to other commands.

Samples are defined in the config file with [[samples]] entries, on top of
the built-in ones. With --pick, choose one interactively and list its
dependencies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.Config.Catalog()
			if err != nil {
				return err
			}
			if !pick {
				fmt.Fprintln(cmd.OutOrStdout(), samplesTable(catalog.List()))
				printNextStep("Use one", "nbenv deps "+catalog.List()[0].Name)
				return nil
			}

			chosen, err := pickSample(cmd.Context(), catalog.List())
			if err != nil || chosen == nil {
				return err
			}
			printInfo("Selected %s", StyleValue.Render(chosen.Name))
			return c.runDeps(cmd.Context(), chosen.Name, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose a sample interactively")
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "with --pick, write the manifest to this file")

	return cmd
}

func samplesTable(samples []source.Sample) string {
	rows := make([][]string, len(samples))
	for i, s := range samples {
		rows[i] = []string{s.Name, s.Description, StyleLink.Render(s.URL)}
	}
	return renderTable([]string{"Name", "Description", "URL"}, rows)
}

// pickSample runs the interactive picker. It returns nil if the user quit
// without choosing.
func pickSample(ctx context.Context, samples []source.Sample) (*source.Sample, error) {
	final, err := tea.NewProgram(NewSampleListModel(samples), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("sample picker: %w", err)
	}
	return final.(SampleListModel).Selected, nil
}
