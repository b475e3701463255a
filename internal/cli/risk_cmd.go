package cli

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
)

func newRiskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Manage the risk register",
	}
	cmd.AddCommand(
		newRiskAddCmd(a),
		newRiskListCmd(a),
		newRiskUpdateCmd(a),
		newRiskRemoveCmd(a),
		newRiskSeverityCmd(a),
		newRiskPlanCmd(a),
	)
	return cmd
}

func newRiskAddCmd(a *App) *cobra.Command {
	var projectRef, name, desc, category, owner string
	var probability float64
	var impact int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a risk; severity and level are derived",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			r := &domain.Risk{
				ProjectID:   projectID,
				Name:        name,
				Description: desc,
				Category:    category,
				Probability: probability,
				Impact:      impact,
			}
			if owner != "" {
				if r.OwnerID, err = resolveUserID(ctx, a, owner); err != nil {
					return fmt.Errorf("--owner: %w", err)
				}
			}
			if err := a.Risks.Create(ctx, r); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added risk %s [%s]  %s\n", r.Name, formatter.TruncID(r.ID),
				formatter.FormatAssessment(calc.Assessment{Severity: r.Severity, Level: r.Level, Scale: a.Config.Risk.SeverityScale}))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&name, "name", "", "Risk name")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().StringVar(&category, "category", "", "Category, e.g. technical")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner email or ID")
	cmd.Flags().Float64Var(&probability, "probability", 0, "Probability in [0, 1]")
	cmd.Flags().IntVar(&impact, "impact", 0, "Impact in [1, 10]")
	for _, f := range []string{"project", "name", "probability", "impact"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newRiskListCmd(a *App) *cobra.Command {
	var projectRef string
	var bySeverity bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's risks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			risks, err := a.Risks.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			if bySeverity {
				sort.SliceStable(risks, func(i, j int) bool {
					return risks[i].Severity > risks[j].Severity
				})
			}
			fmt.Fprintln(out(cmd), formatter.FormatRiskList(risks))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().BoolVar(&bySeverity, "by-severity", false, "Most severe first")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newRiskUpdateCmd(a *App) *cobra.Command {
	var name, desc, category, owner, status string
	var probability float64
	var impact int

	cmd := &cobra.Command{
		Use:   "update RISK",
		Short: "Update a risk; severity is recomputed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var patch service.RiskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("probability") {
				patch.Probability = &probability
			}
			if flags.Changed("impact") {
				patch.Impact = &impact
			}
			if flags.Changed("status") {
				patch.Status = ptr(domain.RiskStatus(status))
			}
			if flags.Changed("owner") {
				id, err := resolveUserID(ctx, a, owner)
				if err != nil {
					return fmt.Errorf("--owner: %w", err)
				}
				patch.OwnerID = &id
			}

			r, err := a.Risks.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated risk %s  %s\n", r.Name,
				formatter.FormatAssessment(calc.Assessment{Severity: r.Severity, Level: r.Level, Scale: a.Config.Risk.SeverityScale}))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&desc, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&owner, "owner", "", "New owner email or ID")
	cmd.Flags().StringVar(&status, "status", "", "open, mitigated, closed")
	cmd.Flags().Float64Var(&probability, "probability", 0, "New probability")
	cmd.Flags().IntVar(&impact, "impact", 0, "New impact")
	return cmd
}

func newRiskRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove RISK",
		Short: "Remove a risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Risks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed risk %s\n", args[0])
			return nil
		},
	}
}

func newRiskSeverityCmd(a *App) *cobra.Command {
	var probability float64
	var impact int
	var scale string

	cmd := &cobra.Command{
		Use:   "severity",
		Short: "Score a probability and impact without saving anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			assessment, err := a.Risks.Assess(probability, impact, scale)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatAssessment(assessment))
			return nil
		},
	}

	cmd.Flags().Float64Var(&probability, "probability", 0, "Probability in [0, 1]")
	cmd.Flags().IntVar(&impact, "impact", 0, "Impact in [1, 10]")
	cmd.Flags().StringVar(&scale, "scale", "", fmt.Sprintf("Scale to use %v (default: configured)", calc.ScaleNames()))
	_ = cmd.MarkFlagRequired("probability")
	_ = cmd.MarkFlagRequired("impact")
	return cmd
}

func newRiskPlanCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage risk response plans",
	}
	cmd.AddCommand(newRiskPlanAddCmd(a), newRiskPlanListCmd(a), newRiskPlanRemoveCmd(a))
	return cmd
}

func newRiskPlanAddCmd(a *App) *cobra.Command {
	var strategy, desc, actions, status string

	cmd := &cobra.Command{
		Use:   "add RISK",
		Short: "Attach a response plan to a risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.RiskResponsePlan{
				RiskID:         args[0],
				Strategy:       domain.ResponseStrategy(strategy),
				Description:    desc,
				PlannedActions: actions,
				Status:         domain.PlanStatus(status),
			}
			if err := a.Risks.AddPlan(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added %s plan %s\n", p.Strategy, formatter.TruncID(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "avoid, mitigate, transfer, accept")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().StringVar(&actions, "actions", "", "Planned actions")
	cmd.Flags().StringVar(&status, "status", "", "planned, in_progress, done (default planned)")
	_ = cmd.MarkFlagRequired("strategy")
	return cmd
}

func newRiskPlanListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list RISK",
		Short: "List a risk's response plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := a.Risks.ListPlans(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatPlanList(plans))
			return nil
		},
	}
}

func newRiskPlanRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PLAN",
		Short: "Remove a response plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Risks.DeletePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed plan %s\n", args[0])
			return nil
		},
	}
}
