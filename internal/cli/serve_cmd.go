package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/api"
	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

var (
	serveAddr          string
	serveAPIKey        string
	serveAutoRecompute bool
)

// serveCmd implements "critpath serve".
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scheduling and Kanban HTTP API",
	Long: `Load the project files and serve the HTTP API. Edits to tasks and
dependencies mark a project's schedule dirty; it is recomputed on the next
request to /projects/{id}/recompute, or right away with --auto-recompute.
Kanban moves never touch the schedule.

SIGINT and SIGTERM shut the server down gracefully within
server.shutdown_timeout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", "", "Listen address (env: CRITPATH_ADDR)")
	f.StringVar(&serveAPIKey, "api-key", "", "Require this bearer token (env: CRITPATH_API_KEY)")
	f.BoolVar(&serveAutoRecompute, "auto-recompute", false, "Recompute dirty schedules in the background (env: CRITPATH_AUTO_RECOMPUTE)")
	f.StringVar(&scheduleProjects, "projects", "", "Glob of project files (env: CRITPATH_PROJECTS)")
	f.StringVar(&scheduleCalendar, "calendar", "", `Default calendar mode (env: CRITPATH_CALENDAR_MODE)`)
	f.StringVar(&scheduleAnchor, "anchor", "", `Sink anchor (env: CRITPATH_SINK_ANCHOR)`)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	o := workspaceOverrides(cmd)
	if cmd.Flags().Changed("addr") {
		o.Addr = &serveAddr
	}
	if cmd.Flags().Changed("api-key") {
		o.APIKey = &serveAPIKey
	}
	if cmd.Flags().Changed("auto-recompute") {
		o.AutoRecompute = &serveAutoRecompute
	}

	rc, meta, err := loadConfig(o)
	if err != nil {
		return err
	}
	logger := logging.New("serve")
	vr := config.Validate(rc.Config, meta)
	for _, issue := range vr.Warnings() {
		logger.Warn(issue.Message, "field", issue.Field)
	}
	if vr.HasErrors() {
		for _, issue := range vr.Errors() {
			logger.Error("invalid configuration", "field", issue.Field, "error", issue.Message)
		}
		return fmt.Errorf("configuration has %d error(s); run \"critpath config validate\"", len(vr.Errors()))
	}
	timeout, err := rc.Config.ShutdownTimeout()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan schedule.Event, 64)
	go logEvents(ctx, logging.New("schedule"), events)

	ws, err := openWorkspace(rc.Config, schedule.WithEvents(events))
	if err != nil {
		return err
	}
	defer ws.Close()

	outcomes, _ := ws.registry.RecomputeAll(ctx, rc.Config.Schedule.Concurrency)
	for _, oc := range outcomes {
		if oc.Err != nil {
			logger.Warn("initial schedule failed", "project", oc.ProjectID, "error", oc.Err)
		}
	}
	logger.Info("projects loaded", "count", len(outcomes), "config", rc.Path)

	router := api.NewRouter(ws.store, ws.registry, rc.Config.Server.APIKey, logging.New("api"))
	return api.Serve(ctx, rc.Config.Server.Addr, router, timeout, logger)
}

// logEvents writes schedule lifecycle events at debug level, failures at
// warn.
func logEvents(ctx context.Context, logger *log.Logger, events <-chan schedule.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			kv := []any{"project", ev.ProjectID, "generation", ev.Generation, "state", ev.State}
			if ev.Error != "" {
				kv = append(kv, "error", ev.Error)
			}
			if ev.Type == schedule.EventFailed {
				logger.Warn(ev.Type, kv...)
				continue
			}
			logger.Debug(ev.Type, kv...)
		}
	}
}
