package middleware

import (
	"net/http"

	"app/internal/session"

	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "session_id"
	CtxSessionKey     = "session" // *session.Session
)

// WithSession はcookieのセッションIDからセッションを復元するミドルウェア。
// 無ければ新規発行してcookieをセットする。
func WithSession(store *session.Store, cookieSecure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sess *session.Session

			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				if s, ok := store.Get(cookie.Value); ok {
					sess = s
				}
			}

			if sess == nil {
				sess = store.New()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			store.Touch(sess)
			c.Set(CtxSessionKey, sess)

			return next(c)
		}
	}
}

// SessionFromContext はWithSessionが入れたセッションを取り出す。
func SessionFromContext(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(CtxSessionKey).(*session.Session)
	return s, ok
}
