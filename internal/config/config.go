package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（:8080）

	DatabaseURL      string // あれば最優先で使うDSN
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト
	PostgresPort     int    // DBポート
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット

	MPAccessToken   string // Mercado Pago アクセストークン
	MPAPIBaseURL    string // ゲートウェイAPIのベースURL（テストで差し替える）
	MPWebhookSecret string // 空ならwebhook署名検証をしない

	// back_urls / notification_url を組み立てるベースURL。
	// RENDER_EXTERNAL_URL → APP_BASE_URL → ローカルデフォルトの順で解決する。
	BaseURL string

	GatewayTimeout    time.Duration
	ReconcileInterval time.Duration // 0なら対帳スイープを起動しない
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		MPAccessToken:   os.Getenv("MP_ACCESS_TOKEN"),
		MPAPIBaseURL:    getenv("MP_API_URL", "https://api.mercadopago.com"),
		MPWebhookSecret: os.Getenv("MP_WEBHOOK_SECRET"),

		BaseURL: firstNonEmpty(
			os.Getenv("RENDER_EXTERNAL_URL"),
			os.Getenv("APP_BASE_URL"),
			"http://127.0.0.1:8080",
		),

		GatewayTimeout:    secenv("GATEWAY_TIMEOUT_SEC", 10),
		ReconcileInterval: secenv("RECONCILE_INTERVAL_SEC", 0),
	}

	pgPort, err := atoienv("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MPAccessToken == "" {
		return Config{}, fmt.Errorf("MP_ACCESS_TOKEN is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func atoienv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func secenv(key string, defSec int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(defSec) * time.Second
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return time.Duration(defSec) * time.Second
	}
	return time.Duration(i) * time.Second
}
