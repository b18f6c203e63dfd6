package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogModel_AddAndView(t *testing.T) {
	t.Parallel()

	el := NewEventLogModel(DefaultTheme())
	assert.True(t, el.IsVisible())
	assert.Contains(t, el.View(), "no events yet")

	el.SetDimensions(60, 5)
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	el.Add(EventEntry{Timestamp: at, Message: "schedule_published (generation 1)"})
	el.Add(EventEntry{Message: "recompute_failed", Warning: true})

	entries := el.Entries()
	require.Len(t, entries, 2)
	assert.False(t, entries[1].Timestamp.IsZero(), "missing timestamps are filled in")
	assert.Contains(t, el.View(), "09:30:00 schedule_published (generation 1)")

	el.Toggle()
	assert.False(t, el.IsVisible())
}

func TestEventLogModel_Bounded(t *testing.T) {
	t.Parallel()

	el := NewEventLogModel(DefaultTheme())
	el.SetDimensions(40, 3)
	for i := range MaxEventLogEntries + 5 {
		el.Add(EventEntry{Message: fmt.Sprintf("event %d", i)})
	}
	entries := el.Entries()
	require.Len(t, entries, MaxEventLogEntries)
	assert.Equal(t, "event 5", entries[0].Message)
	assert.Equal(t, fmt.Sprintf("event %d", MaxEventLogEntries+4), entries[len(entries)-1].Message)
	assert.Contains(t, el.View(), fmt.Sprintf("event %d", MaxEventLogEntries+4), "log follows the newest entry")
}
