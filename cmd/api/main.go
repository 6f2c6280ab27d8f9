package main

import (
	"context"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/gateway"
	infraRepo "app/internal/infra/repository"
	"app/internal/obs"
	"app/internal/server"
	"app/internal/session"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"
	"app/internal/worker"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, isAdmin bool, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":      userID,
		"is_admin": isAdmin,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func main() {
	// .envが無くても環境変数だけで動かせる
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//商品が空なら見本データを入れる
	ctx := context.Background()
	if n, err := productRepo.Count(ctx); err == nil && n == 0 {
		seed := []model.Product{
			{Name: "Camiseta Básica", PriceCents: 5990, ImageURL: "img/camiseta.jpg"},
			{Name: "Calça Jeans Skinny", PriceCents: 12990, ImageURL: "img/calca.jpg"},
			{Name: "Jaqueta de Couro", PriceCents: 34990, ImageURL: "img/jaqueta.jpg"},
		}
		if err := productRepo.CreateBulk(ctx, seed); err != nil {
			logger.Warn("product seed failed", "error", err)
		}
	}

	//ゲートウェイクライアント
	mp := gateway.NewClient(cfg.MPAPIBaseURL, cfg.MPAccessToken, cfg.GatewayTimeout)

	//セッションストア（カート置き場）。期限切れは定期回収する
	sessions := session.NewStore(24 * time.Hour)
	go sessions.RunJanitor(ctx, time.Hour)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	catalogUC := usecase.NewCatalogUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, mp, cfg.BaseURL, logger)
	webhookUC := usecase.NewWebhookUsecase(txManager, mp, logger)

	//Handler生成
	cookieSecure := envBool("COOKIE_SECURE", false)
	productH := handler.NewProductHandler(catalogUC)
	authH := handler.NewAuthHandler(registerUC, loginUC, cookieSecure)
	cartH := handler.NewCartHandler(cartUC)
	checkoutH := handler.NewCheckoutHandler(checkoutUC)
	webhookH := handler.NewWebhookHandler(webhookUC, cfg.MPWebhookSecret, logger)

	//対帳スイープ（設定されたときだけ）
	if cfg.ReconcileInterval > 0 {
		rw := worker.NewReconciliationWorker(orderRepo, mp, webhookUC, cfg.ReconcileInterval, logger)
		go rw.Run(ctx)
	}

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, sessions, cookieSecure, productH, authH, cartH, checkoutH, webhookH)
	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
