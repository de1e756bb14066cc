package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for k3fleet.

To load completions:

Bash:
  $ source <(k3fleet completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ k3fleet completion bash > /etc/bash_completion.d/k3fleet
  # macOS:
  $ k3fleet completion bash > $(brew --prefix)/etc/bash_completion.d/k3fleet

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ k3fleet completion zsh > "${fpath[1]}/_k3fleet"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ k3fleet completion fish | source
  # To load completions for each session, execute once:
  $ k3fleet completion fish > ~/.config/fish/completions/k3fleet.fish

PowerShell:
  PS> k3fleet completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> k3fleet completion powershell > k3fleet.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
