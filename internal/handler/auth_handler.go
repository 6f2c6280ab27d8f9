package handler

import (
	"net/http"
	"time"

	"app/internal/middleware"
	auth "app/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /register /login /logout のHTTP
type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase // 会員登録usecase
	loginUC      *auth.LoginUsecase        // ログインusecase
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/logout", h.logout)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidEmailFormat, auth.ErrUsernameRequired, auth.ErrPasswordTooShort:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case auth.ErrEmailAlreadyExists:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "email already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, out.User)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	//access tokenをHttpOnly cookieへ
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    out.AccessToken,
		Path:     "/",
		Expires:  out.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	//ログイン済みユーザーをセッションにも紐付ける（カートの持ち主）
	if sess, ok := middleware.SessionFromContext(c); ok {
		sess.UserID = out.User.ID
	}

	return c.JSON(http.StatusOK, out.User)
}

func (h *AuthHandler) logout(c echo.Context) error {
	//cookieを失効させる
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if sess, ok := middleware.SessionFromContext(c); ok {
		sess.UserID = 0
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
