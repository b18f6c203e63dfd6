package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// ScheduleEventCmd reads one event from ch as a ScheduleEventMsg. It
// returns nil when ch is closed or ctx is done. Issue it again after every
// ScheduleEventMsg to keep draining the channel.
func ScheduleEventCmd(ctx context.Context, ch <-chan schedule.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return ScheduleEventMsg{Event: ev}
		}
	}
}
