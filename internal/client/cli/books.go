package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitoshi/librarium/internal/client"
	"github.com/hitoshi/librarium/internal/model"
)

// newBooksCommand は書籍管理のサブコマンド群を構築する。
func newBooksCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "書籍カタログと承認ワークフローを操作する",
	}

	cmd.AddCommand(
		newBooksListCommand(app),
		newBooksPendingCommand(app),
		newBooksGetCommand(app),
		newBooksSubmitCommand(app),
		newBooksUpdateCommand(app),
		newBooksDeleteCommand(app),
		newBooksApproveCommand(app),
		newBooksRejectCommand(app),
	)

	return cmd
}

func newBooksListCommand(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "書籍一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := app.client.ListBooks(cmd.Context(), status)
			if err != nil {
				return err
			}
			printBookTable(app, books)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "承認状態で絞り込む（pending/approved/rejected、管理者のみ）")

	return cmd
}

func newBooksPendingCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "承認待ちの書籍一覧を表示する（管理者専用）",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := app.client.ListPendingBooks(cmd.Context())
			if err != nil {
				return err
			}
			printBookTable(app, books)
			return nil
		},
	}
}

func newBooksGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <book-id>",
		Short: "書籍詳細を表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := app.client.GetBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBookDetail(app, book)
			return nil
		},
	}
}

func newBooksSubmitCommand(app *App) *cobra.Command {
	var (
		title    string
		author   string
		isbn     string
		category string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "書籍の登録を申請する（承認されるまで非公開）",
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := app.client.SubmitBook(cmd.Context(), title, author, isbn, category)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Submitted %q (ID: %s, status: %s)\n", book.Title, book.ID, book.ApprovalStatus)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "タイトル")
	cmd.Flags().StringVar(&author, "author", "", "著者")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&category, "category", "", "カテゴリ")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("author")
	cmd.MarkFlagRequired("isbn")

	return cmd
}

func newBooksUpdateCommand(app *App) *cobra.Command {
	var (
		title        string
		author       string
		isbn         string
		category     string
		availability bool
	)

	cmd := &cobra.Command{
		Use:   "update <book-id>",
		Short: "書籍情報を更新する（管理者専用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// 指定されたフラグのみ更新対象に含める
			var update client.BookUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("author") {
				update.Author = &author
			}
			if cmd.Flags().Changed("isbn") {
				update.ISBN = &isbn
			}
			if cmd.Flags().Changed("category") {
				update.Category = &category
			}
			if cmd.Flags().Changed("availability") {
				update.Availability = &availability
			}

			book, err := app.client.UpdateBook(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Updated %q\n", book.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "タイトル")
	cmd.Flags().StringVar(&author, "author", "", "著者")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&category, "category", "", "カテゴリ")
	cmd.Flags().BoolVar(&availability, "availability", true, "貸出可能フラグ")

	return cmd
}

func newBooksDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "書籍を削除する（管理者専用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(app.in, app.out, fmt.Sprintf("Delete book %s?", args[0])) {
				fmt.Fprintln(app.out, "Aborted.")
				return nil
			}

			if err := app.client.DeleteBook(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Deleted.")
			return nil
		},
	}
}

func newBooksApproveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <book-id>",
		Short: "承認待ちの書籍を承認する（管理者専用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := app.client.ApproveBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Approved %q\n", book.Title)
			return nil
		},
	}
}

func newBooksRejectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <book-id>",
		Short: "承認待ちの書籍を却下する（管理者専用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := app.client.RejectBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Rejected %q\n", book.Title)
			return nil
		},
	}
}

// printBookTable は書籍一覧を表形式で出力する。
func printBookTable(app *App, books []*model.Book) {
	if len(books) == 0 {
		fmt.Fprintln(app.out, "No books found.")
		return
	}

	fmt.Fprintf(app.out, "%-36s %-30s %-20s %-15s %-10s %s\n", "ID", "Title", "Author", "ISBN", "Status", "Available")
	fmt.Fprintln(app.out, strings.Repeat("-", 120))

	for _, b := range books {
		fmt.Fprintf(app.out, "%-36s %-30s %-20s %-15s %-10s %t\n",
			b.ID,
			truncate(b.Title, 30),
			truncate(b.Author, 20),
			b.ISBN,
			b.ApprovalStatus,
			b.Availability,
		)
	}
}

// printBookDetail は書籍詳細を出力する。
func printBookDetail(app *App, b *model.Book) {
	fmt.Fprintf(app.out, "ID:           %s\n", b.ID)
	fmt.Fprintf(app.out, "Title:        %s\n", b.Title)
	fmt.Fprintf(app.out, "Author:       %s\n", b.Author)
	fmt.Fprintf(app.out, "ISBN:         %s\n", b.ISBN)
	fmt.Fprintf(app.out, "Category:     %s\n", b.Category)
	fmt.Fprintf(app.out, "Status:       %s\n", b.ApprovalStatus)
	fmt.Fprintf(app.out, "Available:    %t\n", b.Availability)
	fmt.Fprintf(app.out, "Requested by: %s\n", b.RequestedBy)
	if b.ReviewedBy != nil {
		fmt.Fprintf(app.out, "Reviewed by:  %s\n", *b.ReviewedBy)
	}
	if b.ReviewedAt != nil {
		fmt.Fprintf(app.out, "Reviewed at:  %s\n", b.ReviewedAt.Format("2006-01-02 15:04:05"))
	}
}
