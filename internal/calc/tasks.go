package calc

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
)

// DueWindow restricts tasks to deadlines falling within a period from today.
type DueWindow string

const (
	DueAll   DueWindow = "all"
	DueDay   DueWindow = "day"
	DueWeek  DueWindow = "week"
	DueMonth DueWindow = "month"
)

func ParseDueWindow(s string) (DueWindow, error) {
	switch DueWindow(strings.ToLower(s)) {
	case "", DueAll:
		return DueAll, nil
	case DueDay:
		return DueDay, nil
	case DueWeek:
		return DueWeek, nil
	case DueMonth:
		return DueMonth, nil
	}
	return "", domain.Invalidf("unknown due window %q (valid: day, week, month, all)", s)
}

// TaskFilter selects tasks. Zero-valued fields match everything.
type TaskFilter struct {
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	AssigneeID string
	Search     string
	Due        DueWindow
	Now        time.Time
}

func (f TaskFilter) window() (start, end time.Time, ok bool) {
	if f.Due == "" || f.Due == DueAll {
		return time.Time{}, time.Time{}, false
	}
	now := f.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch f.Due {
	case DueDay:
		end = start.AddDate(0, 0, 1)
	case DueWeek:
		end = start.AddDate(0, 0, 7)
	case DueMonth:
		end = start.AddDate(0, 1, 0)
	}
	return start, end, true
}

func (f TaskFilter) matches(t *domain.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != f.AssigneeID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if start, end, ok := f.window(); ok {
		if t.Deadline == nil || t.Deadline.Before(start) || !t.Deadline.Before(end) {
			return false
		}
	}
	return true
}

// FilterTasks returns the tasks matching f, preserving input order.
func FilterTasks(tasks []*domain.Task, f TaskFilter) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

type TaskSortKey string

const (
	SortByDeadline TaskSortKey = "deadline"
	SortByPriority TaskSortKey = "priority"
	SortByTitle    TaskSortKey = "title"
	SortByCreated  TaskSortKey = "created"
)

func ParseTaskSortKey(s string) (TaskSortKey, error) {
	switch TaskSortKey(strings.ToLower(s)) {
	case "", SortByCreated:
		return SortByCreated, nil
	case SortByDeadline:
		return SortByDeadline, nil
	case SortByPriority:
		return SortByPriority, nil
	case SortByTitle:
		return SortByTitle, nil
	}
	return "", domain.Invalidf("unknown sort key %q (valid: %s)", s,
		strings.Join([]string{string(SortByCreated), string(SortByDeadline), string(SortByPriority), string(SortByTitle)}, ", "))
}

// SortTasks sorts in place by key:
//   - deadline: earliest first, tasks without a deadline last
//   - priority: urgent > high > medium > low
//   - title: case-insensitive lexical
//   - created: oldest first
//
// desc reverses the primary key only; ties fall back to task ID. Tasks
// without a deadline stay last in both directions.
func SortTasks(tasks []*domain.Task, key TaskSortKey, desc bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if key == SortByDeadline && (a.Deadline == nil) != (b.Deadline == nil) {
			return b.Deadline == nil
		}
		if c := compareTasks(a, b, key); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID < b.ID
	})
}

func compareTasks(a, b *domain.Task, key TaskSortKey) int {
	switch key {
	case SortByDeadline:
		if a.Deadline == nil || b.Deadline == nil {
			return 0
		}
		return a.Deadline.Compare(*b.Deadline)
	case SortByPriority:
		return b.Priority.Rank() - a.Priority.Rank()
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Progress is the completion ratio of a task set.
type Progress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d (%.0f%%)", p.Completed, p.Total, p.Percent)
}

// TaskProgress counts every task, subtasks included.
func TaskProgress(tasks []*domain.Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsCompleted() {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Completed) / float64(p.Total) * 100
	}
	return p
}
