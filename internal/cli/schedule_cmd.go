package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

var (
	scheduleJSON     bool
	scheduleAnchor   string
	scheduleProjects string
	scheduleCalendar string
)

// scheduleCmd implements "critpath schedule [project-id...]".
var scheduleCmd = &cobra.Command{
	Use:   "schedule [project-id...]",
	Short: "Compute and print project schedules",
	Long: `Load the project files matched by data.projects, run the forward and
backward passes, and print early and late dates, slack and the critical
paths of each project. Without arguments every loaded project is scheduled.

Finish dates are exclusive: a one-day task starting on 2026-10-12 finishes
on 2026-10-13.

Examples:
  critpath schedule
  critpath schedule web --anchor project
  critpath schedule --projects 'plans/*.yaml' --json`,
	ValidArgsFunction: completeProjectIDs,
	RunE:              runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.BoolVar(&scheduleJSON, "json", false, "Output schedules as JSON")
	f.StringVar(&scheduleAnchor, "anchor", "", `Late finish of tasks without successors: "own" or "project" (env: CRITPATH_SINK_ANCHOR)`)
	f.StringVar(&scheduleProjects, "projects", "", "Glob of project files (env: CRITPATH_PROJECTS)")
	f.StringVar(&scheduleCalendar, "calendar", "", `Default calendar mode: "calendar" or "working_days" (env: CRITPATH_CALENDAR_MODE)`)
	rootCmd.AddCommand(scheduleCmd)
}

// workspaceOverrides maps the project selection flags shared by schedule,
// validate and serve onto configuration overrides.
func workspaceOverrides(cmd *cobra.Command) *config.CLIOverrides {
	o := &config.CLIOverrides{}
	if cmd.Flags().Changed("anchor") {
		o.SinkAnchor = &scheduleAnchor
	}
	if cmd.Flags().Changed("projects") {
		o.Projects = &scheduleProjects
	}
	if cmd.Flags().Changed("calendar") {
		o.CalendarMode = &scheduleCalendar
	}
	return o
}

// scheduleReport is one project in the --json output.
type scheduleReport struct {
	ProjectID string      `json:"project_id"`
	Name      string      `json:"name,omitempty"`
	Schedule  *cpm.Result `json:"schedule,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	rc, _, err := loadConfig(workspaceOverrides(cmd))
	if err != nil {
		return err
	}
	ws, err := openWorkspace(rc.Config)
	if err != nil {
		return err
	}
	defer ws.Close()

	ids, err := ws.selectProjects(args)
	if err != nil {
		return err
	}
	outcomes, failed := ws.registry.RecomputeAll(cmd.Context(), rc.Config.Schedule.Concurrency, ids...)

	out := cmd.OutOrStdout()
	if scheduleJSON {
		reports := make([]scheduleReport, 0, len(outcomes))
		for _, o := range outcomes {
			r := scheduleReport{ProjectID: o.ProjectID, Schedule: o.Result}
			if p, err := ws.store.Get(o.ProjectID); err == nil {
				r.Name = p.Name
			}
			if o.Err != nil {
				r.Error = o.Err.Error()
			}
			reports = append(reports, r)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return failed
	}

	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		p, _ := ws.store.Get(o.ProjectID)
		renderSchedule(out, p, o)
	}
	return failed
}

// renderSchedule prints one project's schedule table, critical paths and
// warnings, or the reason it could not be scheduled.
func renderSchedule(out io.Writer, p project.Project, o schedule.Outcome) {
	title := o.ProjectID
	if p.Name != "" {
		title += ": " + p.Name
	}
	fmt.Fprintln(out, underline(title, "-"))

	if o.Err != nil {
		fmt.Fprintf(out, "%s %v\n", styleErrorLbl.Render("cannot schedule:"), o.Err)
		return
	}
	res := o.Result
	fmt.Fprintf(out, "%s  start %s  finish %s  %d day(s)\n\n",
		styleDim.Render(string(res.Mode)), res.ProjectStart, res.ProjectFinish, res.DurationDays)

	titles := make(map[string]string, len(p.Tasks))
	for _, t := range p.Tasks {
		titles[t.ID] = t.Title
	}

	rows := make([][]string, 0, len(res.Tasks))
	for _, tt := range res.Tasks {
		crit := ""
		if tt.IsCritical {
			crit = "*"
		}
		rows = append(rows, []string{
			tt.ID, titles[tt.ID], strconv.Itoa(tt.Duration),
			tt.EarlyStart.String(), tt.EarlyFinish.String(),
			tt.LateStart.String(), tt.LateFinish.String(),
			strconv.Itoa(tt.Slack), crit,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TASK", "TITLE", "DUR", "ES", "EF", "LS", "LF", "SLACK", "CRIT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 2 || col == 7 {
				s = s.Inherit(styleCellRight)
			}
			if row >= 0 && row < len(res.Tasks) && res.Tasks[row].IsCritical {
				s = s.Inherit(styleCritical)
			}
			return s
		})
	fmt.Fprintln(out, tbl.Render())

	if len(res.CriticalPaths) > 0 {
		fmt.Fprintln(out, styleSection.Render("Critical paths:"))
		for _, path := range res.CriticalPaths {
			fmt.Fprintf(out, "  %s\n", strings.Join(path, " -> "))
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "%s %s\n", styleWarnLbl.Render("warning:"), w.Message)
	}
}
