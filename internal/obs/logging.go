// Package obs は構造化ログなどの観測まわり。
package obs

import (
	"log/slog"
	"os"
)

// NewLogger はJSONハンドラのsloggerを作る。
// グローバルにはせず、使う側へDIで渡す。
func NewLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h)
}
