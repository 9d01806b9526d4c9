package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hitoshi/librarium/internal/model"
)

// newLoginCommand はログインコマンドを構築する。
// パスワードはエコーバックなしのプロンプトで読み取る。
func newLoginCommand(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "メールアドレスとパスワードでログインする",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(app.out, "Password: ")
			if err != nil {
				return err
			}

			user, err := app.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "メールアドレス")
	cmd.MarkFlagRequired("email")

	return cmd
}

// newLogoutCommand はログアウトコマンドを構築する。
func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "ローカルのセッションを破棄する",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.client.Logout()
			fmt.Fprintln(app.out, "Logged out.")
			return nil
		},
	}
}

// newRegisterCommand はユーザー登録コマンドを構築する。
func newRegisterCommand(app *App) *cobra.Command {
	var (
		name  string
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "新規ユーザーを登録してログインする",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(app.out, "Password: ")
			if err != nil {
				return err
			}

			user, err := app.client.Register(cmd.Context(), name, email, password, model.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Registered %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "表示名")
	cmd.Flags().StringVar(&email, "email", "", "メールアドレス")
	cmd.Flags().StringVar(&role, "role", "", "ロール（admin または member、省略時はmember）")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

// newProfileCommand は自分のプロフィール表示コマンドを構築する。
func newProfileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "認証済みユーザーの情報を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.client.Profile(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "ID:    %s\n", user.ID)
			fmt.Fprintf(app.out, "Name:  %s\n", user.Name)
			fmt.Fprintf(app.out, "Email: %s\n", user.Email)
			fmt.Fprintf(app.out, "Role:  %s\n", user.Role)
			return nil
		},
	}
}
