package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/session"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	sessions *session.Store,
	cookieSecure bool,
	productH *handler.ProductHandler,
	authH *handler.AuthHandler,
	cartH *handler.CartHandler,
	checkoutH *handler.CheckoutHandler,
	webhookH *handler.WebhookHandler,
) {
	// カタログは読むだけなのでセッション不要
	productH.RegisterRoutes(e)

	// webhookは無認証（ゲートウェイからのserver-to-server呼び出し）。
	// cookieを送ってこないので、ここにセッションを付けると
	// 通知が届くたびに新しいセッションが積まれてしまう。
	webhookH.RegisterRoutes(e)

	// セッションが要るルートだけに載せる
	g := e.Group("", middleware.WithSession(sessions, cookieSecure))
	authH.RegisterRoutes(g)
	cartH.RegisterRoutes(g, cfg)
	checkoutH.RegisterRoutes(g, cfg)
}
