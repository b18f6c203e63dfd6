// Package cli implements the critpath command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool
)

// rootCmd is the base command for critpath.
var rootCmd = &cobra.Command{
	Use:   "critpath",
	Short: "Critical path scheduling for project task graphs",
	Long: `critpath computes early and late dates, slack and critical paths for
projects whose tasks are linked by FS, SS, FF and SF dependencies with lags,
in calendar days or working days. It reads project files, reports schedules,
and serves a Kanban and scheduling API that recomputes on every edit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("verbose") && os.Getenv("CRITPATH_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("CRITPATH_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("CRITPATH_NO_COLOR") != "") {
			flagNoColor = true
		}

		// Commands that read critpath.toml refine this with its [log] section.
		format, _ := logging.ParseFormat(os.Getenv("CRITPATH_LOG_FORMAT"))
		logging.Setup(logging.Options{Level: logging.LevelFor(flagVerbose, flagQuiet), Format: format})

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: CRITPATH_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: CRITPATH_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to critpath.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Override working directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: CRITPATH_NO_COLOR, NO_COLOR)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleErrorLbl.Render("error:"), err)
		return 1
	}
	return 0
}

// NewRootCmd returns a detached copy of the command tree for the completion
// and man page generators.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose (debug) output (env: CRITPATH_VERBOSE)")
	flags.BoolP("quiet", "q", false, "Suppress all output except errors (env: CRITPATH_QUIET)")
	flags.String("config", "", "Path to critpath.toml (default: search upwards from the working directory)")
	flags.String("dir", "", "Override working directory")
	flags.Bool("no-color", false, "Disable colored output (env: CRITPATH_NO_COLOR, NO_COLOR)")

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
