package cli

import (
	"fmt"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
)

func newTeamCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage project teams",
	}
	cmd.AddCommand(
		newTeamAddCmd(a),
		newTeamListCmd(a),
		newTeamUpdateCmd(a),
		newTeamRemoveCmd(a),
		newTeamMemberCmd(a),
	)
	return cmd
}

func newTeamAddCmd(a *App) *cobra.Command {
	var projectRef, name, desc string
	var color int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a team; its creator becomes the leader",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			t := &domain.Team{ProjectID: projectID, Name: name, Description: desc, ColorIndex: color}
			if err := a.Teams.Create(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created team %s %s [%s]\n", formatter.TeamSwatch(t.ColorIndex), t.Name, formatter.TruncID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVar(&name, "name", "", "Team name")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().IntVar(&color, "color", 0, fmt.Sprintf("Color slot, 0-%d", domain.TeamColors-1))
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTeamListCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			teams, err := a.Teams.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatTeamList(teams))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTeamUpdateCmd(a *App) *cobra.Command {
	var name, desc string
	var color int

	cmd := &cobra.Command{
		Use:   "update TEAM",
		Short: "Rename, describe or recolor a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch service.TeamPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("color") {
				patch.ColorIndex = &color
			}
			t, err := a.Teams.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated team %s\n", t.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&desc, "description", "", "New description")
	cmd.Flags().IntVar(&color, "color", 0, "New color slot")
	return cmd
}

func newTeamRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TEAM",
		Short: "Remove a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Teams.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed team %s\n", args[0])
			return nil
		},
	}
}

func newTeamMemberCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage who is on a team",
	}
	cmd.AddCommand(newTeamMemberAddCmd(a), newTeamMemberListCmd(a), newTeamMemberRemoveCmd(a))
	return cmd
}

func newTeamMemberAddCmd(a *App) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add TEAM USER",
		Short: "Put a user (email or ID) on a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := resolveUser(ctx, a, args[1])
			if err != nil {
				return err
			}
			if _, err := a.Teams.AddMember(ctx, args[0], u.ID, role); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added %s to the team\n", u.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role on the team")
	return cmd
}

func newTeamMemberListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list TEAM",
		Aliases: []string{"ls"},
		Short:   "List a team's members",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			members, err := a.Teams.ListMembers(ctx, args[0])
			if err != nil {
				return err
			}
			users, err := userIndex(ctx, a)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatTeamMembers(members, users))
			return nil
		},
	}
}

func newTeamMemberRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TEAM USER",
		Short: "Take a user off a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := resolveUserID(ctx, a, args[1])
			if err != nil {
				return err
			}
			if err := a.Teams.RemoveMember(ctx, args[0], userID); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed %s from the team\n", args[1])
			return nil
		},
	}
}
