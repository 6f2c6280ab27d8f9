package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/session"

	"github.com/labstack/echo/v4"
)

// New は全ハンドラを組み付けたechoを返す。
func New(
	cfg config.Config,
	sessions *session.Store,
	cookieSecure bool,
	productH *handler.ProductHandler,
	authH *handler.AuthHandler,
	cartH *handler.CartHandler,
	checkoutH *handler.CheckoutHandler,
	webhookH *handler.WebhookHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cfg, sessions, cookieSecure, productH, authH, cartH, checkoutH, webhookH)
	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
