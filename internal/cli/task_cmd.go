package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskUpdateCmd(a),
		newTaskDoneCmd(a),
		newTaskRemoveCmd(a),
	)
	return cmd
}

func newTaskAddCmd(a *App) *cobra.Command {
	var projectRef, title, desc, parent, assignee, priority, deadline string
	var cost float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			t := &domain.Task{
				ProjectID:   projectID,
				Title:       title,
				Description: desc,
				Cost:        cost,
				Priority:    domain.TaskPriority(priority),
			}
			if parent != "" {
				t.ParentTaskID = &parent
			}
			if assignee != "" {
				id, err := resolveUserID(ctx, a, assignee)
				if err != nil {
					return fmt.Errorf("--assignee: %w", err)
				}
				t.AssigneeID = &id
			}
			if t.Deadline, err = parseDateFlag("deadline", deadline); err != nil {
				return err
			}

			if err := a.Tasks.Create(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created task %s [%s]\n", t.Title, formatter.TruncID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task ID for a subtask")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee email or ID")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium, high, urgent (default medium)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&cost, "cost", 0, "Cost charged to the project budget")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCmd(a *App) *cobra.Command {
	var projectRef, status, priority, assignee, search, due, sortKey string
	var desc bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List, filter and sort a project's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}

			now := time.Now()
			q := service.TaskQuery{
				Filter: calc.TaskFilter{
					Status:   domain.TaskStatus(status),
					Priority: domain.TaskPriority(priority),
					Search:   search,
					Now:      now,
				},
				Desc: desc,
			}
			if assignee != "" {
				if q.Filter.AssigneeID, err = resolveUserID(ctx, a, assignee); err != nil {
					return fmt.Errorf("--assignee: %w", err)
				}
			}
			if q.Filter.Due, err = calc.ParseDueWindow(due); err != nil {
				return err
			}
			if q.Sort, err = calc.ParseTaskSortKey(sortKey); err != nil {
				return err
			}

			tasks, err := a.Tasks.List(ctx, projectID, q)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatTaskList(tasks, now))
			fmt.Fprintln(out(cmd), formatter.Dim(calc.TaskProgress(tasks).String()+" complete"))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks with this priority")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only tasks assigned to this user")
	cmd.Flags().StringVar(&search, "search", "", "Match title or description")
	cmd.Flags().StringVar(&due, "due", "", "day, week, month or all")
	cmd.Flags().StringVar(&sortKey, "sort", "", "created, deadline, priority, title")
	cmd.Flags().BoolVar(&desc, "desc", false, "Reverse the sort order")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskUpdateCmd(a *App) *cobra.Command {
	var title, desc, parent, assignee, status, priority, deadline string
	var cost float64
	var clearDeadline bool

	cmd := &cobra.Command{
		Use:   "update TASK",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var patch service.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("parent") {
				patch.ParentTaskID = &parent
			}
			if flags.Changed("assignee") {
				id := ""
				if assignee != "" {
					var err error
					if id, err = resolveUserID(ctx, a, assignee); err != nil {
						return fmt.Errorf("--assignee: %w", err)
					}
				}
				patch.AssigneeID = &id
			}
			if flags.Changed("status") {
				patch.Status = ptr(domain.TaskStatus(status))
			}
			if flags.Changed("priority") {
				patch.Priority = ptr(domain.TaskPriority(priority))
			}
			if flags.Changed("cost") {
				patch.Cost = &cost
			}
			var err error
			if patch.Deadline, err = parseDateFlag("deadline", deadline); err != nil {
				return err
			}
			patch.ClearDeadline = clearDeadline

			t, err := a.Tasks.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated task %s (%s)\n", t.Title, t.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&desc, "description", "", "New description")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent task ID (empty detaches)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee (empty unassigns)")
	cmd.Flags().StringVar(&status, "status", "", "not_started, in_progress, completed")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium, high, urgent")
	cmd.Flags().StringVar(&deadline, "deadline", "", "New deadline (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "Remove the deadline")
	cmd.Flags().Float64Var(&cost, "cost", 0, "New cost")
	return cmd
}

func newTaskDoneCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done TASK",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.Tasks.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Completed %s\n", t.Title)
			return nil
		},
	}
}

func newTaskRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TASK",
		Short: "Delete a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed task %s\n", args[0])
			return nil
		},
	}
}
