package project

import (
	"math"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// Statistics summarizes the progress and cost of a project.
type Statistics struct {
	TotalTasks      int                 `json:"total_tasks"`
	CompletedTasks  int                 `json:"completed_tasks"`
	InProgressTasks int                 `json:"in_progress_tasks"`
	OverdueTasks    int                 `json:"overdue_tasks"`
	ByStatus        map[task.Status]int `json:"by_status"`

	Budget               float64 `json:"budget"`
	ActualCost           float64 `json:"actual_cost"`
	CostVariance         float64 `json:"cost_variance"`
	CostPerformanceIndex float64 `json:"cost_performance_index"`
	EstimatedHours       float64 `json:"estimated_hours"`
	ActualHours          float64 `json:"actual_hours"`

	// ProgressPercentage is the mean task progress, rounded.
	ProgressPercentage int `json:"progress_percentage"`
}

// ComputeStatistics summarizes p as of the given date. A task is overdue
// when it ends before asOf and is still todo or in progress. The project's
// actual cost falls back to the sum of task actual costs when unset.
func ComputeStatistics(p Project, asOf calendar.Date) Statistics {
	st := Statistics{
		TotalTasks: len(p.Tasks),
		ByStatus:   make(map[task.Status]int, len(task.Statuses())),
		Budget:     p.Budget,
	}
	for _, s := range task.Statuses() {
		st.ByStatus[s] = 0
	}

	var progress, taskCost float64
	for _, t := range p.Tasks {
		st.ByStatus[t.Status]++
		switch t.Status {
		case task.StatusDone:
			st.CompletedTasks++
		case task.StatusInProgress:
			st.InProgressTasks++
		}
		if t.EndDate < asOf && (t.Status == task.StatusTodo || t.Status == task.StatusInProgress) {
			st.OverdueTasks++
		}
		progress += float64(t.Progress)
		taskCost += t.ActualCost
		st.EstimatedHours += t.EstimatedHours
		st.ActualHours += t.ActualHours
	}

	st.ActualCost = p.ActualCost
	if st.ActualCost == 0 {
		st.ActualCost = taskCost
	}
	st.CostVariance = st.Budget - st.ActualCost
	if st.ActualCost > 0 {
		st.CostPerformanceIndex = st.Budget / st.ActualCost
	}
	if len(p.Tasks) > 0 {
		st.ProgressPercentage = int(math.Round(progress / float64(len(p.Tasks))))
	}
	return st
}
