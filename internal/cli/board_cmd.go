package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
	"github.com/AbdelazizMoustafa10m/critpath/internal/tui"
)

var boardAutoRecompute bool

// boardCmd implements "critpath board <project>".
var boardCmd = &cobra.Command{
	Use:   "board <project>",
	Short: "Open an interactive Kanban board with the live schedule",
	Long: `Show a project's Kanban board next to its schedule. Cards can be moved
between columns and task durations edited; duration edits mark the schedule
dirty and moves do not. Edits live in memory and are not written back to the
project file.

Press ? inside the board for the key reference.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProjectIDs,
	RunE:              runBoard,
}

func init() {
	f := boardCmd.Flags()
	f.BoolVar(&boardAutoRecompute, "auto-recompute", true, "Recompute after every duration edit")
	f.StringVar(&scheduleProjects, "projects", "", "Glob of project files (env: CRITPATH_PROJECTS)")
	f.StringVar(&scheduleCalendar, "calendar", "", `Default calendar mode (env: CRITPATH_CALENDAR_MODE)`)
	f.StringVar(&scheduleAnchor, "anchor", "", `Sink anchor (env: CRITPATH_SINK_ANCHOR)`)
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	o := workspaceOverrides(cmd)
	o.AutoRecompute = &boardAutoRecompute
	rc, _, err := loadConfig(o)
	if err != nil {
		return err
	}

	events := make(chan schedule.Event, 64)
	ws, err := openWorkspace(rc.Config, schedule.WithEvents(events))
	if err != nil {
		return err
	}
	defer ws.Close()
	if _, err := ws.selectProjects(args); err != nil {
		return err
	}

	// The alternate screen owns the terminal until the board closes.
	logging.SetOutput(io.Discard)
	defer logging.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tui.Run(ctx, tui.AppConfig{
		Version:   buildinfo.GetInfo().Version,
		ProjectID: args[0],
		Store:     ws.store,
		Registry:  ws.registry,
		Events:    events,
	}); err != nil {
		return fmt.Errorf("board %q: %w", args[0], err)
	}
	return nil
}
