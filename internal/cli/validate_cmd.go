package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// validateCmd implements "critpath validate [file...]".
var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check project files for errors",
	Long: `Decode each project file, check its fields, and compute its schedule to
surface unknown task references, dependency cycles, lags that break the
target finish and calendars without working days. Files are checked
independently and concurrently. Without arguments the files matched by
data.projects are checked.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&scheduleProjects, "projects", "", "Glob of project files (env: CRITPATH_PROJECTS)")
	validateCmd.Flags().StringVar(&scheduleCalendar, "calendar", "", `Default calendar mode (env: CRITPATH_CALENDAR_MODE)`)
	validateCmd.Flags().StringVar(&scheduleAnchor, "anchor", "", `Sink anchor (env: CRITPATH_SINK_ANCHOR)`)
	rootCmd.AddCommand(validateCmd)
}

// fileCheck is the verdict on one project file.
type fileCheck struct {
	Path      string
	ProjectID string
	Tasks     int
	Critical  int
	Err       error
}

func runValidate(cmd *cobra.Command, args []string) error {
	rc, _, err := loadConfig(workspaceOverrides(cmd))
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		if paths, err = doublestar.FilepathGlob(rc.Config.Data.Projects, doublestar.WithFilesOnly()); err != nil {
			return fmt.Errorf("matching %q: %w", rc.Config.Data.Projects, err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no project files match %q", rc.Config.Data.Projects)
		}
	}
	sort.Strings(paths)

	checks, err := checkFiles(cmd.Context(), rc.Config, paths)
	if err != nil {
		return err
	}
	return printChecks(cmd.OutOrStdout(), checks)
}

// checkFiles validates every path, at most schedule.concurrency at a time.
// Per-file problems land in the returned checks; the error is reserved for
// configuration problems.
func checkFiles(ctx context.Context, cfg *config.Config, paths []string) ([]fileCheck, error) {
	settings, err := cfg.ScheduleSettings()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.CalendarMode()
	if err != nil {
		return nil, err
	}

	checks := make([]fileCheck, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Schedule.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			checks[i] = checkFile(ctx, path, mode, cfg.Calendar.MaxGapDays, settings)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return checks, nil
}

func checkFile(ctx context.Context, path string, mode calendar.Mode, maxGap int, settings schedule.Settings) fileCheck {
	fc := fileCheck{Path: path}
	p, err := project.LoadFile(path)
	if err != nil {
		fc.Err = err
		return fc
	}
	fc.ProjectID = p.ID
	fc.Tasks = len(p.Tasks)

	store := project.NewStore(
		project.WithDefaultMode(mode),
		project.WithCalendarOptions(calendar.WithMaxGap(maxGap)),
		project.WithLogger(logging.Discard()),
	)
	if err := store.Put(p); err != nil {
		fc.Err = err
		return fc
	}

	settings.AutoRecompute = false
	ctrl := schedule.NewController(p.ID, store, schedule.WithSettings(settings), schedule.WithLogger(logging.Discard()))
	defer ctrl.Close()
	res, err := ctrl.Recompute(ctx)
	if err != nil {
		fc.Err = err
		return fc
	}
	fc.Critical = len(res.CriticalTasks)
	return fc
}

func printChecks(out io.Writer, checks []fileCheck) error {
	var errs []error
	for _, c := range checks {
		if c.Err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", styleErrorLbl.Render("FAIL"), c.Path, c.Err)
			errs = append(errs, fmt.Errorf("%s: %w", c.Path, c.Err))
			continue
		}
		fmt.Fprintf(out, "%s %s: project %s, %d task(s), %d critical\n",
			styleSuccess.Render("ok  "), c.Path, c.ProjectID, c.Tasks, c.Critical)
	}
	fmt.Fprintf(out, "\n%d file(s), %d failed\n", len(checks), len(errs))
	if len(errs) > 0 {
		return fmt.Errorf("%d project file(s) failed validation: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
