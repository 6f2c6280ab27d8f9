package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ゲートウェイからの非同期通知の受け口。
// どんな内容でも必ず200空ボディを返す。エラーを返すとゲートウェイが
// 再送し続けるため、内部の失敗はログに落とすだけにする。
type WebhookHandler struct {
	uc            *usecase.WebhookUsecase
	webhookSecret string // 空なら署名検証をしない（観測された挙動のまま）
	logger        *slog.Logger
}

// DI
func NewWebhookHandler(uc *usecase.WebhookUsecase, webhookSecret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		uc:            uc,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/receber_notificacao_webhook", h.receive)
}

type webhookRequest struct {
	Type string `json:"type"`
	Data struct {
		// ゲートウェイは数値でも文字列でも送ってくる
		ID json.Number `json:"id"`
	} `json:"data"`
}

func (h *WebhookHandler) receive(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("webhook with unparseable body", "error", err)
		return c.NoContent(http.StatusOK)
	}

	if h.webhookSecret != "" && !h.verifySignature(c) {
		h.logger.Warn("webhook signature verification failed")
		return c.NoContent(http.StatusOK)
	}

	paymentID, err := req.Data.ID.Int64()
	if err != nil {
		if req.Type == "payment" {
			h.logger.Warn("webhook with unparseable payment id", "raw_id", req.Data.ID.String())
		}
		return c.NoContent(http.StatusOK)
	}

	if err := h.uc.HandleNotification(c.Request().Context(), usecase.NotificationInput{
		Type:      req.Type,
		PaymentID: paymentID,
	}); err != nil {
		//内部の失敗は飲み込む（ゲートウェイには常に成功を見せる）
		h.logger.Error("webhook processing failed", "payment_id", paymentID, "error", err)
	}

	return c.NoContent(http.StatusOK)
}

// verifySignature はMercado Pagoのx-signatureヘッダ
// （ts=...,v1=... / v1 = HMAC-SHA256のhex）を検証する。
// manifestのdata.idは通知URLのクエリパラメータから取り（bodyではない）、
// 英数字は小文字に揃える。値が無いセグメントはmanifestから省く。
func (h *WebhookHandler) verifySignature(c echo.Context) bool {
	sig := c.Request().Header.Get("x-signature")
	if sig == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(sig, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	dataID := strings.ToLower(c.QueryParam("data.id"))
	requestID := c.Request().Header.Get("x-request-id")

	var manifest strings.Builder
	if dataID != "" {
		fmt.Fprintf(&manifest, "id:%s;", dataID)
	}
	if requestID != "" {
		fmt.Fprintf(&manifest, "request-id:%s;", requestID)
	}
	fmt.Fprintf(&manifest, "ts:%s;", ts)

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write([]byte(manifest.String()))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(v1))
}
