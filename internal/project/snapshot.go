package project

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// Snapshot is an immutable copy of the scheduling inputs of one project,
// taken under the store lock. One recomputation works from exactly one
// snapshot.
type Snapshot struct {
	ProjectID string
	// Version counts the schedule-affecting edits applied to the project.
	Version      uint64
	Config       Config
	Tasks        []task.Task
	Dependencies []task.Dependency
}

// Durations maps task IDs to durations.
func (s *Snapshot) Durations() map[string]int {
	out := make(map[string]int, len(s.Tasks))
	for _, t := range s.Tasks {
		out[t.ID] = t.Duration
	}
	return out
}

// TaskIDs returns the task IDs in ascending order.
func (s *Snapshot) TaskIDs() []string {
	ids := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	return ids
}

// Fingerprint hashes every field that influences the schedule. Two snapshots
// with the same fingerprint produce the same schedule; titles, progress,
// costs and Kanban placement do not contribute.
func (s *Snapshot) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeString := func(v string) {
		writeInt(int64(len(v)))
		_, _ = h.WriteString(v)
	}
	writeDate := func(d calendar.Date) { writeInt(int64(d)) }

	writeDate(s.Config.Start)
	if s.Config.TargetFinish != nil {
		writeInt(1)
		writeDate(*s.Config.TargetFinish)
	} else {
		writeInt(0)
	}
	writeString(string(s.Config.Mode))
	holidays := append([]calendar.Date(nil), s.Config.Holidays...)
	sort.Slice(holidays, func(i, j int) bool { return holidays[i] < holidays[j] })
	writeInt(int64(len(holidays)))
	for _, d := range holidays {
		writeDate(d)
	}

	tasks := append([]task.Task(nil), s.Tasks...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	writeInt(int64(len(tasks)))
	for _, t := range tasks {
		writeString(t.ID)
		writeDate(t.StartDate)
		writeDate(t.EndDate)
		writeInt(int64(t.Duration))
	}

	deps := append([]task.Dependency(nil), s.Dependencies...)
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })
	writeInt(int64(len(deps)))
	for _, d := range deps {
		writeString(d.ID)
		writeString(d.Predecessor)
		writeString(d.Successor)
		writeString(string(d.Type))
		writeInt(int64(d.Lag))
	}
	return h.Sum64()
}
