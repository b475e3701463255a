package calc

import (
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrStr(s string) *string       { return &s }

func sampleTasks(now time.Time) []*domain.Task {
	return []*domain.Task{
		{ID: "a", Title: "Write brief", Status: domain.TaskNotStarted, Priority: domain.PriorityLow,
			Deadline: ptrTime(now.Add(2 * time.Hour)), CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "b", Title: "review Budget", Description: "finance sign-off", Status: domain.TaskInProgress,
			Priority: domain.PriorityUrgent, AssigneeID: ptrStr("u1"),
			Deadline: ptrTime(now.AddDate(0, 0, 5)), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "c", Title: "Launch", Status: domain.TaskCompleted, Priority: domain.PriorityHigh,
			Deadline: ptrTime(now.AddDate(0, 0, 20)), CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "d", Title: "Archive docs", Status: domain.TaskNotStarted, Priority: domain.PriorityMedium,
			CreatedAt: now.Add(-4 * time.Hour)},
	}
}

func TestFilterTasks(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	tasks := sampleTasks(now)

	tests := []struct {
		name   string
		filter TaskFilter
		want   []string
	}{
		{"zero filter matches all", TaskFilter{}, []string{"a", "b", "c", "d"}},
		{"status", TaskFilter{Status: domain.TaskNotStarted}, []string{"a", "d"}},
		{"priority", TaskFilter{Priority: domain.PriorityUrgent}, []string{"b"}},
		{"assignee", TaskFilter{AssigneeID: "u1"}, []string{"b"}},
		{"search title case-insensitive", TaskFilter{Search: "BUDGET"}, []string{"b"}},
		{"search description", TaskFilter{Search: "finance"}, []string{"b"}},
		{"due today", TaskFilter{Due: DueDay, Now: now}, []string{"a"}},
		{"due this week", TaskFilter{Due: DueWeek, Now: now}, []string{"a", "b"}},
		{"due this month", TaskFilter{Due: DueMonth, Now: now}, []string{"a", "b", "c"}},
		{"combined", TaskFilter{Due: DueWeek, Now: now, Priority: domain.PriorityLow}, []string{"a"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(FilterTasks(tasks, tc.filter))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("FilterTasks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortTasks(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		key  TaskSortKey
		desc bool
		want []string
	}{
		{SortByDeadline, false, []string{"a", "b", "c", "d"}},
		{SortByDeadline, true, []string{"c", "b", "a", "d"}},
		{SortByPriority, false, []string{"b", "c", "d", "a"}},
		{SortByPriority, true, []string{"a", "d", "c", "b"}},
		{SortByTitle, false, []string{"d", "c", "b", "a"}},
		{SortByCreated, false, []string{"d", "a", "b", "c"}},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s/desc=%v", tc.key, tc.desc), func(t *testing.T) {
			tasks := sampleTasks(now)
			SortTasks(tasks, tc.key, tc.desc)
			if diff := cmp.Diff(tc.want, ids(tasks)); diff != "" {
				t.Errorf("SortTasks(%s, desc=%v) mismatch (-want +got):\n%s", tc.key, tc.desc, diff)
			}
		})
	}
}

func TestParseDueWindowAndSortKey(t *testing.T) {
	w, err := ParseDueWindow("")
	require.NoError(t, err)
	assert.Equal(t, DueAll, w)
	w, err = ParseDueWindow("Week")
	require.NoError(t, err)
	assert.Equal(t, DueWeek, w)
	_, err = ParseDueWindow("year")
	assert.ErrorIs(t, err, domain.ErrValidation)

	k, err := ParseTaskSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByCreated, k)
	_, err = ParseTaskSortKey("cost")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskProgress(t *testing.T) {
	assert.Equal(t, Progress{}, TaskProgress(nil))

	p := TaskProgress(sampleTasks(time.Now()))
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 1, p.Completed)
	assert.InDelta(t, 25, p.Percent, 1e-9)
	assert.Equal(t, "1/4 (25%)", p.String())
}

func TestBudget(t *testing.T) {
	b := Budget(1000, []float64{200, 300}, []float64{100})
	assert.InDelta(t, 600, b.Committed, 1e-9)
	assert.InDelta(t, 400, b.Remaining, 1e-9)
	assert.InDelta(t, 60, b.Utilization, 1e-9)
	assert.False(t, b.OverBudget())

	over := Budget(100, []float64{150})
	assert.True(t, over.OverBudget())

	zero := Budget(0)
	assert.Equal(t, BudgetSummary{}, zero)
}
