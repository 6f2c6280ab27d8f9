package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	sub := g.Group("")
	sub.Use(middleware.AuthJWT(cfg))

	sub.GET("/checkout", h.checkout)
}

// checkoutが成功したらゲートウェイのホスト型チェックアウトへ302で送る。
func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, sess)
	if err != nil {
		return writeError(c, err)
	}

	return c.Redirect(http.StatusFound, out.RedirectTo)
}
