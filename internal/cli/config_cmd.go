package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
)

// configCmd groups the debug and validate subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect, validate, and debug critpath configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "critpath config debug".
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Display the fully-resolved configuration showing each value and
where it came from (cli flag, environment variable, config file, or default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadConfig(nil)
		if err != nil {
			return err
		}
		printResolvedConfig(cmd.OutOrStdout(), resolved)
		return nil
	},
}

// configValidateCmd implements "critpath config validate".
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Long:  "Check the configuration for errors and warnings, including unknown keys in critpath.toml.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadConfig(nil)
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd.OutOrStdout(), result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

const fieldWidth = 20

// printResolvedConfig writes every key grouped by section, with its env
// variable and source.
func printResolvedConfig(out io.Writer, rc *config.ResolvedConfig) {
	fmt.Fprintln(out, underline("Configuration Debug", "="))
	fmt.Fprintln(out)
	if rc.Path != "" {
		fmt.Fprintf(out, "Config file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Config file: none found")
	}

	section := ""
	for _, key := range config.Keys() {
		sec, name, _ := strings.Cut(key, ".")
		if sec != section {
			section = sec
			fmt.Fprintln(out)
			fmt.Fprintln(out, styleSection.Render("["+sec+"]"))
		}
		src := rc.Sources[key]
		fmt.Fprintf(out, "  %-*s = %-36s %s %s\n",
			fieldWidth, name, rc.Value(key),
			sourceStyle(src).Render(fmt.Sprintf("(source: %s)", src)),
			styleDim.Render(config.EnvVar(key)))
	}
}

// printValidationResult writes the validation report.
func printValidationResult(out io.Writer, result *config.ValidationResult) {
	fmt.Fprintln(out, underline("Configuration Validation", "="))
	fmt.Fprintln(out)

	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}
	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
