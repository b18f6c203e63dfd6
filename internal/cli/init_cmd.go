package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/tui"
)

var (
	initFlagName     string
	initFlagID       string
	initFlagStart    string
	initFlagCalendar = calendar.ModeCalendar
	initFlagForce    bool
	initInteractive  bool
)

// initCmd implements "critpath init [template]". It never reads an
// existing critpath.toml, so it is safe in an empty directory.
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Scaffold critpath.toml and an example project",
	Long: `Write a critpath.toml and an example project file into the working
directory. Existing files are kept unless --force is given.

Examples:
  critpath init
  critpath init --id launch --name "Product launch" --start 2026-11-02 --calendar working_days
  critpath init --interactive`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names, _ := config.ListTemplates()
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runInit,
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initFlagName, "name", "n", "", "Project name (default: directory name)")
	f.StringVar(&initFlagID, "id", "", "Project ID and file name (default: derived from the name)")
	f.StringVar(&initFlagStart, "start", "", "Project start date, YYYY-MM-DD (default: today)")
	f.Var(&initFlagCalendar, "calendar", `Calendar mode: "calendar" or "working_days"`)
	f.BoolVar(&initFlagForce, "force", false, "Overwrite existing files")
	f.BoolVarP(&initInteractive, "interactive", "i", false, "Ask for the project details in a form")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := config.DefaultTemplate
	if len(args) > 0 {
		name = args[0]
	}
	if !config.TemplateExists(name) {
		available, err := config.ListTemplates()
		if err != nil {
			return fmt.Errorf("listing available templates: %w", err)
		}
		return fmt.Errorf("template %q not found; available templates: %s", name, strings.Join(available, ", "))
	}

	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	projectName := initFlagName
	if projectName == "" {
		projectName = filepath.Base(destDir)
	}
	id := initFlagID
	if id == "" {
		id = slug(projectName)
	}
	startText := initFlagStart
	if startText == "" {
		startText = calendar.FromTime(time.Now()).String()
	}
	mode := initFlagCalendar

	if initInteractive {
		answers, err := tui.RunInitWizard(tui.InitAnswers{Name: projectName, ID: id, Start: startText, Mode: string(mode)})
		if err != nil {
			return err
		}
		projectName, id, startText, mode = answers.Name, answers.ID, answers.Start, calendar.Mode(answers.Mode)
	}

	if err := tui.ValidateProjectID(id); err != nil {
		return err
	}
	start, err := calendar.ParseDate(startText)
	if err != nil {
		return err
	}

	cfgPath := filepath.Join(destDir, config.ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil && !initFlagForce {
		return fmt.Errorf("%s already exists in %s; use --force to overwrite", config.ConfigFileName, destDir)
	}

	created, err := config.RenderTemplate(name, destDir, config.TemplateVars{
		ProjectID:    id,
		ProjectName:  projectName,
		StartDate:    start.String(),
		CalendarMode: string(mode),
	}, initFlagForce)
	if err != nil {
		return fmt.Errorf("rendering template %q: %w", name, err)
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Initialized project %q from template %q\n\n", id, name)
	if len(created) > 0 {
		fmt.Fprintln(out, "Created files:")
		for _, f := range created {
			rel, relErr := filepath.Rel(destDir, f)
			if relErr != nil {
				rel = f
			}
			fmt.Fprintf(out, "  %s\n", rel)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  critpath validate")
	fmt.Fprintln(out, "  critpath schedule", id)
	fmt.Fprintln(out, "  critpath serve")
	return nil
}

// slug lowercases s and replaces every run of other characters with '-'.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
