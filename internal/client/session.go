package client

import (
	"sync"

	"github.com/hitoshi/librarium/internal/model"
)

// Session は認証済みセッションの状態を表す。
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// LoggedIn はセッションが有効かどうかを返す。
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// SessionStore はクライアントのセッション状態を保持する。
// 購読者はセッションの変化（ログイン・ログアウト・401による失効）の通知を受け取る。
// 複数ゴルーチンからの利用に対して安全。
type SessionStore struct {
	mu          sync.RWMutex
	current     Session
	nextSubID   int
	subscribers map[int]func(Session)
}

// NewSessionStore は空のSessionStoreを生成する。
func NewSessionStore() *SessionStore {
	return &SessionStore{
		subscribers: make(map[int]func(Session)),
	}
}

// Set はセッションを設定し、購読者に通知する。
func (s *SessionStore) Set(token string, user *model.User) {
	s.mu.Lock()
	s.current = Session{Token: token, User: user}
	subs := s.snapshotSubscribers()
	session := s.current
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// Clear はセッションを破棄し、購読者に通知する。
// ログアウトおよびサーバーからの401応答時に呼ばれる。
func (s *SessionStore) Clear() {
	s.mu.Lock()
	s.current = Session{}
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Session{})
	}
}

// Current は現在のセッションを返す。
func (s *SessionStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe はセッション変化の通知を購読する。
// 返される関数を呼ぶと購読を解除できる。
func (s *SessionStore) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// snapshotSubscribers は呼び出し時点の購読者一覧を返す。ロック保持中に呼ぶこと。
func (s *SessionStore) snapshotSubscribers() []func(Session) {
	subs := make([]func(Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}
