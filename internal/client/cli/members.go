package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitoshi/librarium/internal/client"
	"github.com/hitoshi/librarium/internal/model"
)

// newMembersCommand は会員管理のサブコマンド群を構築する。
func newMembersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "会員記録を操作する",
	}

	cmd.AddCommand(
		newMembersListCommand(app),
		newMembersGetCommand(app),
		newMembersCreateCommand(app),
		newMembersUpdateCommand(app),
		newMembersDeleteCommand(app),
	)

	return cmd
}

func newMembersListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "会員一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app.client.ListMembers(cmd.Context())
			if err != nil {
				return err
			}

			if len(members) == 0 {
				fmt.Fprintln(app.out, "No members found.")
				return nil
			}

			fmt.Fprintf(app.out, "%-36s %-25s %-30s %-15s %s\n", "ID", "Name", "Email", "Membership", "Borrowed")
			fmt.Fprintln(app.out, strings.Repeat("-", 115))

			for _, m := range members {
				fmt.Fprintf(app.out, "%-36s %-25s %-30s %-15s %d\n",
					m.ID,
					truncate(m.Name, 25),
					truncate(m.Email, 30),
					m.MembershipID,
					len(m.BorrowedBooks),
				)
			}
			return nil
		},
	}
}

func newMembersGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <member-id>",
		Short: "会員詳細を貸出書籍の展開付きで表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.client.GetMember(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "ID:         %s\n", m.ID)
			fmt.Fprintf(app.out, "Name:       %s\n", m.Name)
			fmt.Fprintf(app.out, "Email:      %s\n", m.Email)
			fmt.Fprintf(app.out, "Membership: %s\n", m.MembershipID)
			fmt.Fprintf(app.out, "Role:       %s\n", m.Role)

			if len(m.BorrowedBooks) == 0 {
				fmt.Fprintln(app.out, "Borrowed:   none")
				return nil
			}

			fmt.Fprintln(app.out, "Borrowed:")
			for _, b := range m.BorrowedBooks {
				if b.Book == nil {
					// 参照先が削除済みの貸出記録
					fmt.Fprintf(app.out, "  - %s (book no longer in catalog)\n", b.BookID)
					continue
				}
				fmt.Fprintf(app.out, "  - %s by %s (ISBN %s)\n", b.Book.Title, b.Book.Author, b.Book.ISBN)
			}
			return nil
		},
	}
}

// memberFlags は会員作成・更新で共有するフラグ値。
type memberFlags struct {
	name          string
	email         string
	membershipID  string
	role          string
	borrowedBooks []string
}

func (f *memberFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "氏名")
	cmd.Flags().StringVar(&f.email, "email", "", "メールアドレス")
	cmd.Flags().StringVar(&f.membershipID, "membership-id", "", "会員番号")
	cmd.Flags().StringVar(&f.role, "role", "", "ロール（admin または member）")
	cmd.Flags().StringSliceVar(&f.borrowedBooks, "borrowed-books", nil, "貸出中書籍のID（カンマ区切り）")
}

func (f *memberFlags) toInput() client.MemberInput {
	return client.MemberInput{
		Name:          f.name,
		Email:         f.email,
		MembershipID:  f.membershipID,
		Role:          model.Role(f.role),
		BorrowedBooks: f.borrowedBooks,
	}
}

func newMembersCreateCommand(app *App) *cobra.Command {
	var flags memberFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "会員を登録する（管理者専用）",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.client.CreateMember(cmd.Context(), flags.toInput())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Created member %s (ID: %s)\n", m.Name, m.ID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("membership-id")

	return cmd
}

func newMembersUpdateCommand(app *App) *cobra.Command {
	var flags memberFlags

	cmd := &cobra.Command{
		Use:   "update <member-id>",
		Short: "会員情報を更新する（管理者専用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.client.UpdateMember(cmd.Context(), args[0], flags.toInput())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Updated member %s\n", m.Name)
			return nil
		},
	}

	flags.register(cmd)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("membership-id")

	return cmd
}

func newMembersDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <member-id>",
		Short: "会員を削除する（管理者専用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(app.in, app.out, fmt.Sprintf("Delete member %s?", args[0])) {
				fmt.Fprintln(app.out, "Aborted.")
				return nil
			}

			if err := app.client.DeleteMember(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Deleted.")
			return nil
		},
	}
}
