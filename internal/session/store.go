// Package session はサーバー側セッション（カート置き場）。
// セッションIDのcookieをキーにしたメモリ上のストアで、永続化はしない。
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 1ユーザー分のセッション状態。
// Cartは productID → quantity。1セッション1リクエストの前提なので
// Session自体の排他は持たない。
type Session struct {
	ID        string
	UserID    int64 // 未ログインは0
	Cart      map[int64]int64
	ExpiresAt time.Time
}

func (s *Session) LoggedIn() bool {
	return s.UserID > 0
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// New は新しいセッションを発行して保存する。
func (st *Store) New() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Cart:      make(map[int64]int64),
		ExpiresAt: time.Now().Add(st.ttl),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Get はIDでセッションを引く。期限切れは削除して「無し」扱い。
func (st *Store) Get(id string) (*Session, bool) {
	// ExpiresAtはTouchがロック下で書くので、読み取りも同じロック下で行う
	st.mu.RLock()
	s, ok := st.sessions[id]
	expired := ok && time.Now().After(s.ExpiresAt)
	st.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if expired {
		st.Delete(id)
		return nil, false
	}
	return s, true
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Touch は有効期限を延長する（リクエスト毎に呼ぶ）。
func (st *Store) Touch(s *Session) {
	st.mu.Lock()
	s.ExpiresAt = time.Now().Add(st.ttl)
	st.mu.Unlock()
}

// Sweep はnow時点で期限切れのセッションをまとめて削除し、削除件数を返す。
// Getは再訪したIDしか消せないので、二度と来ない訪問者のぶんはここで回収する。
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if now.After(s.ExpiresAt) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor はctxが閉じるまでintervalごとにSweepする。
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep(time.Now())
		}
	}
}
