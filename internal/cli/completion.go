package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/errors"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for lsview.

Examples:
  # Bash
  lsview completion bash > /etc/bash_completion.d/lsview

  # Zsh
  lsview completion zsh > "${fpath[1]}/_lsview"

  # Fish
  lsview completion fish > ~/.config/fish/completions/lsview.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(w)
		case "zsh":
			return rootCmd.GenZshCompletion(w)
		case "fish":
			return rootCmd.GenFishCompletion(w, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(w)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeViewNames offers the views the user may see.
func completeViewNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := loadApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer a.Close()

	var names []string
	for _, v := range a.reg.Views(a.user) {
		if !v.Hidden {
			names = append(names, v.Name+"\t"+v.DisplayTitle())
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
