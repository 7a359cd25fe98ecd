package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nbenv/pkg/source"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nbenv.

Bash:
  $ source <(nbenv completion bash)

Zsh:
  $ nbenv completion zsh > "${fpath[1]}/_nbenv"

Fish:
  $ nbenv completion fish > ~/.config/fish/completions/nbenv.fish

PowerShell:
  PS> nbenv completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeNotebook completes the <notebook> argument with sample names
// from the catalog, falling back to .ipynb files on disk.
func (c *CLI) completeNotebook(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	samples := source.DefaultSamples()
	if c.Config != nil {
		if catalog, err := c.Config.Catalog(); err == nil {
			samples = catalog.List()
		}
	}

	var out []string
	for _, s := range samples {
		if strings.HasPrefix(s.Name, toComplete) {
			out = append(out, s.Name+"\t"+s.Description)
		}
	}
	if len(out) == 0 {
		return []string{"ipynb"}, cobra.ShellCompDirectiveFilterFileExt
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
