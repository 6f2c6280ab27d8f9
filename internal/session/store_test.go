package session_test

import (
	"sync"
	"testing"
	"time"

	"app/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestStore_NewAndGet(t *testing.T) {
	st := session.NewStore(time.Hour)

	s := st.New()
	assert.NotEmpty(t, s.ID)
	assert.NotNil(t, s.Cart)
	assert.False(t, s.LoggedIn())

	got, ok := st.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestStore_GetUnknownID(t *testing.T) {
	st := session.NewStore(time.Hour)

	_, ok := st.Get("no-such-session")
	assert.False(t, ok)
}

func TestStore_ExpiredSessionIsDropped(t *testing.T) {
	//TTLを負にして即期限切れにする
	st := session.NewStore(-time.Second)

	s := st.New()
	_, ok := st.Get(s.ID)
	assert.False(t, ok)
}

func TestStore_TouchExtendsExpiry(t *testing.T) {
	st := session.NewStore(time.Hour)

	s := st.New()
	before := s.ExpiresAt
	time.Sleep(5 * time.Millisecond)
	st.Touch(s)

	assert.True(t, s.ExpiresAt.After(before))
}

func TestStore_Delete(t *testing.T) {
	st := session.NewStore(time.Hour)

	s := st.New()
	st.Delete(s.ID)

	_, ok := st.Get(s.ID)
	assert.False(t, ok)
}

func TestStore_SweepPurgesExpired(t *testing.T) {
	//TTLを負にして全セッションを即期限切れにする
	st := session.NewStore(-time.Second)

	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		ids = append(ids, st.New().ID)
	}

	// Getで再訪しないセッションもSweepで回収される
	removed := st.Sweep(time.Now())
	assert.Equal(t, 10, removed)

	for _, id := range ids {
		_, ok := st.Get(id)
		assert.False(t, ok)
	}

	//二度目は空振り
	assert.Equal(t, 0, st.Sweep(time.Now()))
}

func TestStore_SweepKeepsLiveSessions(t *testing.T) {
	st := session.NewStore(time.Hour)

	s := st.New()
	assert.Equal(t, 0, st.Sweep(time.Now()))

	got, ok := st.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestStore_ConcurrentGetAndTouchSameSession(t *testing.T) {
	st := session.NewStore(time.Hour)
	s := st.New()

	//同じcookieを持つ並行リクエストを模す（-race用）
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got, ok := st.Get(s.ID); ok {
					st.Touch(got)
				}
			}
		}()
	}
	wg.Wait()

	_, ok := st.Get(s.ID)
	assert.True(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	st := session.NewStore(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := st.New()
			st.Touch(s)
			_, _ = st.Get(s.ID)
			st.Delete(s.ID)
		}()
	}
	wg.Wait()
}

func TestSession_LoggedIn(t *testing.T) {
	s := &session.Session{}
	assert.False(t, s.LoggedIn())

	s.UserID = 7
	assert.True(t, s.LoggedIn())
}
