package server_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/gateway"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/session"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
)

// ルート構成の確認用に全依存を空実装で埋める。

type noopProductRepo struct{}

func (noopProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	return []model.Product{}, nil
}
func (noopProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	return model.Product{}, repo.ErrNotFound
}
func (noopProductRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	return []model.Product{}, nil
}
func (noopProductRepo) Count(ctx context.Context) (int64, error)                    { return 0, nil }
func (noopProductRepo) CreateBulk(ctx context.Context, items []model.Product) error { return nil }

type noopUserRepo struct{}

func (noopUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (noopUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	return nil, repo.ErrUserNotFound
}
func (noopUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repo.ErrUserNotFound
}

type noopGateway struct{}

func (noopGateway) CreatePreference(ctx context.Context, req gateway.PreferenceRequest) (gateway.Preference, error) {
	return gateway.Preference{}, errors.New("not used")
}
func (noopGateway) GetPayment(ctx context.Context, paymentID int64) (gateway.Payment, error) {
	return gateway.Payment{}, errors.New("not used")
}
func (noopGateway) SearchPaymentsByReference(ctx context.Context, ref string) ([]gateway.Payment, error) {
	return nil, errors.New("not used")
}

type noopTxManager struct{}

func (noopTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return errors.New("not used")
}

type noopVerifier struct{}

func (noopVerifier) Verify(plain string, hashed string) bool { return false }

type noopIssuer struct{}

func (noopIssuer) Issue(userID int64, isAdmin bool, now time.Time) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not used")
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func newTestServer(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(time.Hour)
}

func buildServer(sessions *session.Store) http.Handler {
	cfg := config.Config{JWTSecret: "secret"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalogUC := usecase.NewCatalogUsecase(noopProductRepo{})
	cartUC := usecase.NewCartUsecase(noopProductRepo{})
	checkoutUC := usecase.NewCheckoutUsecase(noopTxManager{}, noopGateway{}, "http://127.0.0.1", logger)
	webhookUC := usecase.NewWebhookUsecase(noopTxManager{}, noopGateway{}, logger)
	registerUC := auth.NewRegisterUserUsecase(noopUserRepo{}, auth.NewBcryptPasswordHasher(4), realClock{})
	loginUC := auth.NewLoginUsecase(noopUserRepo{}, noopVerifier{}, noopIssuer{}, realClock{})

	return server.New(cfg, sessions, false,
		handler.NewProductHandler(catalogUC),
		handler.NewAuthHandler(registerUC, loginUC, false),
		handler.NewCartHandler(cartUC),
		handler.NewCheckoutHandler(checkoutUC),
		handler.NewWebhookHandler(webhookUC, "", logger),
	)
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return true
		}
	}
	return false
}

func TestRoutes_WebhookDoesNotAllocateSession(t *testing.T) {
	sessions := newTestServer(t)
	srv := buildServer(sessions)

	// ゲートウェイの再送を模して複数回叩く
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/receber_notificacao_webhook",
			strings.NewReader(`{"type":"merchant_order","data":{"id":1}}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, hasSessionCookie(rec))
	}

	//1件もセッションが積まれていない
	assert.Equal(t, 0, sessions.Sweep(time.Now().Add(48*time.Hour)))
}

func TestRoutes_CatalogDoesNotAllocateSession(t *testing.T) {
	sessions := newTestServer(t)
	srv := buildServer(sessions)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, hasSessionCookie(rec))
	assert.Equal(t, 0, sessions.Sweep(time.Now().Add(48*time.Hour)))
}

func TestRoutes_CartRouteAllocatesSession(t *testing.T) {
	sessions := newTestServer(t)
	srv := buildServer(sessions)

	//未認証なので401だが、セッションミドルウェアは通っている
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, hasSessionCookie(rec))
}
