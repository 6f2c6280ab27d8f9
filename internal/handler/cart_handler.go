package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カートのHTTP。カートはセッションに載っているのでPOST bodyは無く、
// 商品IDはパスで受ける。
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	sub := g.Group("")
	sub.Use(middleware.AuthJWT(cfg))

	sub.GET("/cart", h.getCart)
	sub.GET("/add_to_cart/:product_id", h.addToCart)
	sub.GET("/remove_from_cart/:product_id", h.removeFromCart)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	out, err := h.uc.List(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	if err := h.uc.Add(c.Request().Context(), sess, productID); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeFromCart(c echo.Context) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	h.uc.Remove(sess, productID)

	out, err := h.uc.List(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
