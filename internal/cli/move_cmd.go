package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/api"
	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

var (
	moveStatus      string
	moveOrder       int
	moveBaseVersion uint64
	moveServer      string
	moveAPIKey      string
)

// moveCmd implements "critpath move <project-id> <task-id>".
var moveCmd = &cobra.Command{
	Use:   "move <project-id> <task-id>",
	Short: "Move a task on a running server's Kanban board",
	Long: `Send a Kanban move to a running "critpath serve". The task is placed in
the --status column at position --order (0 is the top). A move only changes
board order and status; it does not invalidate the schedule.

The server address and API key default to server.addr and server.api_key.

Examples:
  critpath move web B --status in_progress
  critpath move web C --status done --order 0 --server http://planner:8080`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	f := moveCmd.Flags()
	f.StringVar(&moveStatus, "status", "", "Target column: backlog, todo, in_progress, review or done")
	f.IntVar(&moveOrder, "order", 0, "Position within the target column")
	f.Uint64Var(&moveBaseVersion, "base-version", 0, "Board version the move was prepared against (0 skips the check)")
	f.StringVar(&moveServer, "server", "", "Server base URL (default: derived from server.addr)")
	f.StringVar(&moveAPIKey, "api-key", "", "Bearer token (env: CRITPATH_API_KEY)")
	_ = moveCmd.MarkFlagRequired("status")
	_ = moveCmd.RegisterFlagCompletionFunc("status", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		statuses := make([]string, 0, len(task.Statuses()))
		for _, s := range task.Statuses() {
			statuses = append(statuses, string(s))
		}
		return statuses, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	status := task.Status(strings.ToLower(strings.TrimSpace(moveStatus)))
	if !status.IsValid() {
		return fmt.Errorf("unknown status %q", moveStatus)
	}

	o := &config.CLIOverrides{}
	if cmd.Flags().Changed("api-key") {
		o.APIKey = &moveAPIKey
	}
	rc, _, err := loadConfig(o)
	if err != nil {
		return err
	}
	base := moveServer
	if base == "" {
		base = baseURL(rc.Config.Server.Addr)
	}

	client := &moveClient{base: base, apiKey: rc.Config.Server.APIKey, http: &http.Client{Timeout: 30 * time.Second}}
	ordering, err := client.Move(cmd.Context(), args[0], args[1], api.MoveBody{
		Status:      status,
		Order:       moveOrder,
		BaseVersion: moveBaseVersion,
	})
	if err != nil {
		return err
	}
	printOrdering(cmd.OutOrStdout(), ordering)
	return nil
}

// baseURL turns a listen address such as ":8080" into a URL to dial.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// moveClient posts Kanban moves to the HTTP API.
type moveClient struct {
	base   string
	apiKey string
	http   *http.Client
}

func (c *moveClient) Move(ctx context.Context, projectID, taskID string, body api.MoveBody) (kanban.Ordering, error) {
	var ordering kanban.Ordering
	payload, err := json.Marshal(body)
	if err != nil {
		return ordering, err
	}
	endpoint := strings.TrimSuffix(c.base, "/") + "/projects/" + url.PathEscape(projectID) + "/tasks/" + url.PathEscape(taskID) + "/move"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ordering, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ordering, fmt.Errorf("contacting %s: %w", c.base, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ordering, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb api.ErrorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return ordering, fmt.Errorf("move rejected (%d %s): %s", resp.StatusCode, eb.Code, eb.Error)
		}
		return ordering, fmt.Errorf("move rejected: %s", resp.Status)
	}
	if err := json.Unmarshal(data, &ordering); err != nil {
		return ordering, fmt.Errorf("decoding response: %w", err)
	}
	return ordering, nil
}

func printOrdering(out io.Writer, o kanban.Ordering) {
	fmt.Fprintf(out, "%s %s: %s -> %s at %d (board version %d)\n",
		styleSuccess.Render("moved"), o.TaskID, o.From, o.To, o.Index, o.Version)
	if o.Resolved {
		fmt.Fprintln(out, styleWarnLbl.Render("note:"), "the board changed since base version; the move was re-applied on the latest order")
	}
	for _, status := range task.Statuses() {
		ids, ok := o.Columns[status]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  %-12s %s\n", status, strings.Join(ids, ", "))
	}
}
