package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitoshi/librarium/internal/model"
)

// newUsersCommand はユーザー管理（管理者専用）のサブコマンド群を構築する。
func newUsersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "ユーザーアカウントを管理する（管理者専用）",
	}

	cmd.AddCommand(
		newUsersListCommand(app),
		newUsersSetRoleCommand(app),
		newUsersRemoveCommand(app),
	)

	return cmd
}

func newUsersListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "全ユーザーの一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Fprintln(app.out, "No users found.")
				return nil
			}

			fmt.Fprintf(app.out, "%-36s %-25s %-30s %s\n", "ID", "Name", "Email", "Role")
			fmt.Fprintln(app.out, strings.Repeat("-", 100))

			for _, u := range users {
				fmt.Fprintf(app.out, "%-36s %-25s %-30s %s\n",
					u.ID,
					truncate(u.Name, 25),
					truncate(u.Email, 30),
					u.Role,
				)
			}
			return nil
		},
	}
}

func newUsersSetRoleCommand(app *App) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "set-role <user-id>",
		Short: "ユーザーのロールを変更する（自分自身は変更不可）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.client.UpdateUserRole(cmd.Context(), args[0], model.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Role of %s is now %s\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "新しいロール（admin または member）")
	cmd.MarkFlagRequired("role")

	return cmd
}

func newUsersRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user-id>",
		Short: "ユーザーを削除する（自分自身は削除不可）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(app.in, app.out, fmt.Sprintf("Delete user %s?", args[0])) {
				fmt.Fprintln(app.out, "Aborted.")
				return nil
			}

			if err := app.client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Deleted.")
			return nil
		},
	}
}
