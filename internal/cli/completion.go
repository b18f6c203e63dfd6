package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
)

// completionCmd generates shell completion scripts for critpath.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for critpath.

  Bash:
    critpath completion bash | sudo tee /etc/bash_completion.d/critpath > /dev/null

  Zsh:
    critpath completion zsh > "${fpath[1]}/_critpath"

  Fish:
    critpath completion fish > ~/.config/fish/completions/critpath.fish

  PowerShell:
    critpath completion powershell > critpath.ps1`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeProjectIDs offers the IDs of the projects data.projects matches,
// minus those already on the command line.
func completeProjectIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	rc, _, err := config.Load(flagConfig, ".", os.LookupEnv, nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	projects, err := project.LoadGlob(rc.Config.Data.Projects)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	given := make(map[string]bool, len(args))
	for _, a := range args {
		given[a] = true
	}
	var ids []string
	for _, p := range projects {
		if !given[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
