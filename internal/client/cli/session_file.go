package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hitoshi/librarium/internal/client"
)

// sessionFileName はセッションを永続化するファイル名。
const sessionFileName = "session.json"

// sessionFilePath はセッションファイルの保存先を返す。
// 既定はホームディレクトリ配下の ~/.librarium/session.json。
func sessionFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".librarium", sessionFileName), nil
}

// loadSession はセッションファイルからセッションを読み込んでストアに反映する。
// ファイルが存在しない場合は何もしない。
func loadSession(store *client.SessionStore) error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var session client.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// 壊れたセッションファイルは未ログインとして扱う
		return nil
	}

	if session.LoggedIn() {
		store.Set(session.Token, session.User)
	}

	return nil
}

// persistSession はセッションの変化をファイルに書き出す。
// 失効・ログアウト時はファイルを削除する。
func persistSession(session client.Session) error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}

	if !session.LoggedIn() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	// トークンを含むためオーナーのみ読み書き可とする
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}
