package cli

import (
	"fmt"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
)

func newResourceCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage project resources",
	}
	cmd.AddCommand(
		newResourceAddCmd(a),
		newResourceListCmd(a),
		newResourceUpdateCmd(a),
		newResourceRemoveCmd(a),
		newResourcePlanCmd(a),
	)
	return cmd
}

func newResourceAddCmd(a *App) *cobra.Command {
	var projectRef, name, typ, unit, desc string
	var total, available float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			r := &domain.Resource{
				ProjectID:   projectID,
				Name:        name,
				Type:        domain.ResourceType(typ),
				Unit:        unit,
				Description: desc,
				Total:       total,
				Available:   total,
			}
			if cmd.Flags().Changed("available") {
				r.Available = available
			}
			if err := a.Resources.Create(ctx, r); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added resource %s [%s]\n", r.Name, formatter.TruncID(r.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&name, "name", "", "Resource name")
	cmd.Flags().StringVar(&typ, "type", "", "human, equipment, material, other (default other)")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit, e.g. hours")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().Float64Var(&total, "total", 0, "Total quantity")
	cmd.Flags().Float64Var(&available, "available", 0, "Available quantity (default: total)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newResourceListCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			resources, err := a.Resources.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatResourceList(resources))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newResourceUpdateCmd(a *App) *cobra.Command {
	var name, typ, unit, desc string
	var total, available float64

	cmd := &cobra.Command{
		Use:   "update RESOURCE",
		Short: "Update resource fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch service.ResourcePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("type") {
				patch.Type = ptr(domain.ResourceType(typ))
			}
			if flags.Changed("unit") {
				patch.Unit = &unit
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("total") {
				patch.Total = &total
			}
			if flags.Changed("available") {
				patch.Available = &available
			}
			r, err := a.Resources.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated resource %s (%s/%s available)\n", r.Name, formatter.Amount(r.Available), formatter.Amount(r.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&typ, "type", "", "New type")
	cmd.Flags().StringVar(&unit, "unit", "", "New unit")
	cmd.Flags().StringVar(&desc, "description", "", "New description")
	cmd.Flags().Float64Var(&total, "total", 0, "New total")
	cmd.Flags().Float64Var(&available, "available", 0, "New available quantity")
	return cmd
}

func newResourceRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove RESOURCE",
		Short: "Remove a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Resources.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed resource %s\n", args[0])
			return nil
		},
	}
}

func newResourcePlanCmd(a *App) *cobra.Command {
	var projectRef, notes string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resource plan, or save its notes with --notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("notes") {
				if _, err := a.Plans.SaveNotes(ctx, projectID, notes); err != nil {
					return err
				}
			}
			view, err := a.Plans.Get(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatResourcePlan(view))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&notes, "notes", "", "Replace the plan's notes")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newWorkPackageCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wp",
		Short: "Manage work packages",
	}
	cmd.AddCommand(newWorkPackageAddCmd(a), newWorkPackageListCmd(a), newWorkPackageRemoveCmd(a))
	return cmd
}

func newWorkPackageAddCmd(a *App) *cobra.Command {
	var projectRef, code, name string
	var cost float64
	var days int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a work package",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			w := &domain.WorkPackage{
				ProjectID:     projectID,
				Code:          code,
				Name:          name,
				EstimatedCost: cost,
				EstimatedDays: days,
			}
			if err := a.WorkPackages.Create(ctx, w); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added work package %s [%s]\n", w.Name, formatter.TruncID(w.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&code, "code", "", "WBS code, e.g. 1.2")
	cmd.Flags().StringVar(&name, "name", "", "Work package name")
	cmd.Flags().Float64Var(&cost, "cost", 0, "Estimated cost")
	cmd.Flags().IntVar(&days, "days", 0, "Estimated duration in days")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWorkPackageListCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's work packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			wps, err := a.WorkPackages.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatWorkPackageList(wps))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newWorkPackageRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove WP",
		Short: "Remove a work package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.WorkPackages.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed work package %s\n", args[0])
			return nil
		},
	}
}
