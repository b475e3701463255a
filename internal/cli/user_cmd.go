package cli

import (
	"fmt"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/spf13/cobra"
)

func newUserCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(a), newUserListCmd(a))
	return cmd
}

func newUserAddCmd(a *App) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &domain.User{Email: email, Name: name}
			if err := a.Users.Create(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created user %s <%s> [%s]\n", u.Name, u.Email, formatter.TruncID(u.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUserListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatUserList(users))
			return nil
		},
	}
}
