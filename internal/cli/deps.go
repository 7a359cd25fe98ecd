package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/manifest"
	"github.com/matzehuels/nbenv/pkg/pipeline"
	"github.com/matzehuels/nbenv/pkg/render"
)

// depsOpts holds the command-line flags for the deps command.
type depsOpts struct {
	runOpts
	output string // manifest file, overrides manifest.path
	format string // manifest format, overrides manifest.format
	check  bool   // compare instead of write
	print  bool   // print the encoded manifest instead of the table
}

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var opts depsOpts

	cmd := &cobra.Command{
		Use:   "deps <notebook>",
		Short: "List the packages a notebook imports and publish its manifest",
		Long: `List the top-level packages imported by a notebook's code cells.

The notebook may be a local .ipynb file, an http(s) URL or the name of a
sample (see "nbenv samples"). The resulting manifest replaces the one at
--output and in any redis or mongo sink enabled in the config.`,
		Example: `  nbenv deps analysis.ipynb
  nbenv deps pandas -o requirements.txt
  nbenv deps analysis.ipynb -o requirements.txt --check
  nbenv deps https://example.com/nb.ipynb --print --format json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNotebook,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeps(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the manifest to this file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "manifest format: pyenv, requirements, pyscript, json (default: from file extension)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "fail if the manifest at --output is out of date instead of writing it")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print the manifest instead of the package table")

	return cmd
}

func (c *CLI) runDeps(ctx context.Context, arg string, opts depsOpts, w io.Writer) error {
	format, err := c.manifestFormat(opts.format)
	if err != nil {
		return err
	}

	var file *manifest.FileSink
	if output := firstNonEmpty(opts.output, c.Config.Manifest.Path); output != "" {
		file = manifest.NewFileSink(output, format)
	}

	if opts.check {
		if file == nil {
			return errors.New(errors.ErrCodeInvalidInput, "--check needs --output or manifest.path in the config")
		}
		return c.checkDeps(ctx, arg, file, opts, w)
	}

	var extra []manifest.Publisher
	if file != nil {
		extra = append(extra, manifest.Named{Name: "file", Publisher: file})
	}
	result, err := c.process(ctx, arg, nil, opts.runOpts, extra...)
	if err != nil {
		return err
	}

	if opts.print {
		if format == "" {
			format = manifest.FormatPyEnv
		}
		return writeManifest(w, result.Manifest, format)
	}

	printSuccess("Found %d packages in %s", result.Manifest.Len(), result.Title())
	fmt.Fprintln(w, formatStats(result.Stats.Cells, result.Stats.CodeCells, result.Stats.Degraded, result.Stats.Dependencies))
	if result.Manifest.Len() > 0 {
		fmt.Fprintln(w, depsTable(result.Cells, result.Dependencies()))
	}
	printDegraded(result)
	if file != nil {
		printFile(file.Path)
	} else {
		printNextStep("Write it", fmt.Sprintf("nbenv deps %s -o requirements.txt", arg))
	}
	return nil
}

// checkDeps compares the manifest the notebook implies with the one stored
// in file. Nothing is published.
func (c *CLI) checkDeps(ctx context.Context, arg string, file *manifest.FileSink, opts depsOpts, w io.Writer) error {
	runner, err := c.newRunner(nil, manifest.Discard, opts.noCache)
	if err != nil {
		return err
	}
	result, err := runner.Execute(ctx, pipeline.Options{Source: arg, Refresh: opts.refresh})
	if err != nil {
		return err
	}

	current, err := file.Load()
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeFileNotFound, "no manifest at %s", file.Path)
		}
		return err
	}

	added, removed := result.Manifest.Diff(current)
	if len(added) == 0 && len(removed) == 0 {
		printSuccess("%s is up to date", file.Path)
		return nil
	}
	fmt.Fprint(w, formatDrift(added, removed))
	return errors.New(errors.ErrCodeInvalidInput, "%s is out of date (%d missing, %d unused)", file.Path, len(added), len(removed))
}

// formatDrift lists packages the notebook needs but the manifest lacks (+)
// and packages the manifest lists but the notebook no longer imports (-).
func formatDrift(added, removed []string) string {
	var b strings.Builder
	for _, p := range added {
		b.WriteString(styleAdded.Render("+ "+p) + "\n")
	}
	for _, p := range removed {
		b.WriteString(styleRemoved.Render("- "+p) + "\n")
	}
	return b.String()
}

// depsTable lists packages with the cells importing them.
func depsTable(cells []render.Cell, packages []string) string {
	where := moduleCells(cells)
	rows := make([][]string, len(packages))
	for i, p := range packages {
		idx := make([]string, len(where[p]))
		for j, n := range where[p] {
			idx[j] = strconv.Itoa(n)
		}
		rows[i] = []string{strconv.Itoa(i + 1), p, strings.Join(idx, ", ")}
	}
	return renderTable([]string{"#", "Package", "Cells"}, rows)
}

// moduleCells maps each module to the indexes of the cells importing it.
func moduleCells(cells []render.Cell) map[string][]int {
	out := make(map[string][]int)
	for _, c := range cells {
		for _, m := range c.Modules {
			out[m] = append(out[m], c.Index)
		}
	}
	return out
}

func printDegraded(result *pipeline.Result) {
	for _, d := range result.Degraded {
		printWarning("cell %d: %s", d.Index, errors.UserMessage(d.Err))
	}
}

func writeManifest(w io.Writer, m *manifest.Manifest, format manifest.Format) error {
	data, err := manifest.Encode(m, format)
	if err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
