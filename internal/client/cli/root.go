// Package cli は図書館管理APIのコマンドラインクライアントを提供する。
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitoshi/librarium/internal/client"
)

// defaultBaseURL はAPIサーバーの既定の接続先。
const defaultBaseURL = "http://localhost:8080"

// App はCLIアプリケーションの状態を保持する。
type App struct {
	client *client.Client
	in     io.Reader
	out    io.Writer
}

// NewApp はAppを生成する。
// セッションファイルから既存のセッションを復元し、以後の変化を永続化する。
func NewApp(baseURL string, in io.Reader, out io.Writer) *App {
	sessions := client.NewSessionStore()

	// 既存セッションの復元（失敗は未ログイン扱い）
	_ = loadSession(sessions)

	// セッション変化（ログイン・ログアウト・401失効）をファイルに反映する
	sessions.Subscribe(func(s client.Session) {
		_ = persistSession(s)
	})

	return &App{
		client: client.NewClient(baseURL, sessions),
		in:     in,
		out:    out,
	}
}

// NewRootCommand はCLIのルートコマンドを構築する。
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "図書館管理APIのコマンドラインクライアント",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newRegisterCommand(app),
		newProfileCommand(app),
		newBooksCommand(app),
		newMembersCommand(app),
		newUsersCommand(app),
	)

	return root
}

// Execute はCLIのエントリーポイント。終了コードを返す。
func Execute() int {
	baseURL := os.Getenv("LIBRARIUM_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	app := NewApp(baseURL, os.Stdin, os.Stdout)
	root := NewRootCommand(app)

	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
