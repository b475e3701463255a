package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
)

func newStakeholderCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stakeholder",
		Aliases: []string{"sh"},
		Short:   "Manage project stakeholders and their ownership shares",
	}
	cmd.AddCommand(
		newStakeholderAddCmd(a),
		newStakeholderListCmd(a),
		newStakeholderUpdateCmd(a),
		newStakeholderRemoveCmd(a),
		newStakeholderAllocationCmd(a),
	)
	return cmd
}

func newStakeholderAddCmd(a *App) *cobra.Command {
	var projectRef, user, role string
	var pct float64
	var interactive bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Give a user a share of a project",
		Long: `Give a user a share of a project. The shares of one project never
add up to more than 100%; a share that does not fit is rejected.

With -i a form asks for the values and lowers a share that does not fit
to what is still available.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}

			st := &domain.Stakeholder{ProjectID: projectID, Role: role, Percentage: pct}
			if interactive {
				if !a.IsInteractive() {
					return errors.New("stakeholder add -i needs a terminal")
				}
				users, err := a.Users.List(ctx)
				if err != nil {
					return err
				}
				alloc, err := a.Stakeholders.Allocation(ctx, projectID)
				if err != nil {
					return err
				}
				in := stakeholderInput{Role: role}
				if err := stakeholderForm(users, alloc, &in).Run(); err != nil {
					return err
				}
				share, clamped, err := clampShare(in.Percentage, alloc.Available)
				if err != nil {
					return err
				}
				if clamped {
					fmt.Fprintln(out(cmd), formatter.StyleYellow.Render(
						fmt.Sprintf("Share lowered to %s, the remaining allocation", formatter.Percent(share))))
				}
				st.UserID, st.Role, st.Percentage = in.UserID, in.Role, share
			} else {
				if user == "" {
					return errors.New("--user is required (or use -i)")
				}
				if st.UserID, err = resolveUserID(ctx, a, user); err != nil {
					return fmt.Errorf("--user: %w", err)
				}
			}

			if err := a.Stakeholders.Create(ctx, st); err != nil {
				return err
			}
			alloc, err := a.Stakeholders.Allocation(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added stakeholder %s with %s\n", formatter.TruncID(st.ID), formatter.Percent(st.Percentage))
			fmt.Fprintln(out(cmd), formatter.FormatAllocation(alloc))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&user, "user", "", "User email or ID")
	cmd.Flags().StringVar(&role, "role", "", "Role, e.g. sponsor")
	cmd.Flags().Float64Var(&pct, "percentage", 0, "Ownership share in percent (0-100]")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the values with a form")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newStakeholderListCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's stakeholders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			list, err := a.Stakeholders.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			alloc, err := a.Stakeholders.Allocation(ctx, projectID)
			if err != nil {
				return err
			}
			users, err := userIndex(ctx, a)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatStakeholders(list, alloc, users))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newStakeholderUpdateCmd(a *App) *cobra.Command {
	var role string
	var pct float64

	cmd := &cobra.Command{
		Use:   "update STAKEHOLDER",
		Short: "Change a stakeholder's role or share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch service.StakeholderPatch
			if cmd.Flags().Changed("role") {
				patch.Role = &role
			}
			if cmd.Flags().Changed("percentage") {
				patch.Percentage = &pct
			}
			st, err := a.Stakeholders.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated stakeholder %s (%s)\n", formatter.TruncID(st.ID), formatter.Percent(st.Percentage))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "New role")
	cmd.Flags().Float64Var(&pct, "percentage", 0, "New share in percent")
	return cmd
}

func newStakeholderRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove STAKEHOLDER",
		Short: "Remove a stakeholder, freeing their share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Stakeholders.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed stakeholder %s\n", args[0])
			return nil
		},
	}
}

func newStakeholderAllocationCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "allocation",
		Short: "Show how much of a project is allocated",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			alloc, err := a.Stakeholders.Allocation(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatAllocation(alloc))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
