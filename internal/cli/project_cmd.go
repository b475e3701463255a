package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(a),
		newProjectListCmd(a),
		newProjectInspectCmd(a),
		newProjectUpdateCmd(a),
		newProjectArchiveCmd(a),
		newProjectRemoveCmd(a),
	)
	return cmd
}

func newProjectAddCmd(a *App) *cobra.Command {
	var shortID, name, desc, owner, deadline string
	var budget float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := &domain.Project{
				ShortID:     shortID,
				Name:        name,
				Description: desc,
				TotalBudget: budget,
			}
			if owner != "" {
				id, err := resolveUserID(ctx, a, owner)
				if err != nil {
					return fmt.Errorf("--owner: %w", err)
				}
				p.OwnerID = id
			}
			d, err := parseDateFlag("deadline", deadline)
			if err != nil {
				return err
			}
			p.Deadline = d

			if err := a.Projects.Create(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created project %s [%s]\n", p.Name, p.ShortID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID (3-6 uppercase letters + 2-4 digits, e.g. WEB01)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner email or ID (defaults to --as)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&budget, "budget", 0, "Total budget")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectListCmd(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.Projects.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatProjectList(projects, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectInspectCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PROJECT",
		Short: "Show a project overview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, a, args[0])
			if err != nil {
				return err
			}
			ov, err := a.Overview.Get(ctx, id)
			if err != nil {
				return err
			}
			users, err := userIndex(ctx, a)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatOverview(ov, users, time.Now()))
			return nil
		},
	}
}

func newProjectUpdateCmd(a *App) *cobra.Command {
	var name, desc, status, deadline string
	var budget float64
	var clearDeadline bool

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Update project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, a, args[0])
			if err != nil {
				return err
			}

			var patch service.ProjectPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("status") {
				patch.Status = ptr(domain.ProjectStatus(status))
			}
			if flags.Changed("budget") {
				patch.TotalBudget = &budget
			}
			if patch.Deadline, err = parseDateFlag("deadline", deadline); err != nil {
				return err
			}
			patch.ClearDeadline = clearDeadline

			p, err := a.Projects.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated project %s [%s]\n", p.Name, p.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&desc, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "not_started, in_progress, on_hold, completed")
	cmd.Flags().StringVar(&deadline, "deadline", "", "New deadline (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "Remove the deadline")
	cmd.Flags().Float64Var(&budget, "budget", 0, "New total budget")
	return cmd
}

func newProjectArchiveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive PROJECT",
		Short: "Archive a project (it becomes read-only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, a, args[0])
			if err != nil {
				return err
			}
			if err := a.Projects.Archive(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Archived project %s\n", args[0])
			return nil
		},
	}
}

func newProjectRemoveCmd(a *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Delete a project and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, a, args[0])
			if err != nil {
				return err
			}
			if err := a.Projects.Delete(ctx, id, force); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed project %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Delete without archiving first")
	return cmd
}
