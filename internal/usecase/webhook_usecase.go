package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"app/internal/domain/model"
	"app/internal/infra/gateway"
	repo "app/internal/repository"
)

// WebhookUsecase はゲートウェイからの非同期通知で注文ステータスを突き合わせる。
// 通知はat-least-onceで届くので、PENDING→PAIDの遷移は何度届いても1回分の効果しか持たない。
type WebhookUsecase struct {
	tx      repo.TransactionManager
	gateway gateway.PaymentGateway
	logger  *slog.Logger
}

// DI
func NewWebhookUsecase(
	tx repo.TransactionManager,
	gw gateway.PaymentGateway,
	logger *slog.Logger,
) *WebhookUsecase {
	return &WebhookUsecase{
		tx:      tx,
		gateway: gw,
		logger:  logger,
	}
}

type NotificationInput struct {
	Type      string
	PaymentID int64
}

// HandleNotification は通知1件を処理する。
// 戻りのerrorはログ用で、handlerは内容に関わらず200を返す。
func (u *WebhookUsecase) HandleNotification(ctx context.Context, in NotificationInput) error {
	// payment以外の通知は受領だけして無視
	if in.Type != "payment" {
		return nil
	}

	payment, err := u.gateway.GetPayment(ctx, in.PaymentID)
	if err != nil {
		return fmt.Errorf("fetch payment %d: %w", in.PaymentID, err)
	}

	// 承認済みかつ相関トークンがある通知だけを反映する
	if payment.Status != gateway.PaymentStatusApproved || payment.ExternalReference == "" {
		return nil
	}

	orderID, err := ParseOrderIDFromReference(payment.ExternalReference)
	if err != nil {
		return fmt.Errorf("parse external reference %q: %w", payment.ExternalReference, err)
	}

	return u.MarkPaidIfPending(ctx, orderID)
}

// MarkPaidIfPending はPENDINGの注文だけをPAIDへ進める。
// 注文が見つからない・既にPAIDのときは何もしない。
func (u *WebhookUsecase) MarkPaidIfPending(ctx context.Context, orderID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			// 未知の注文IDは黙って受領（通知の再送を誘発しない）
			u.logger.Warn("webhook for unknown order", "order_id", orderID)
			return nil
		}
		if err != nil {
			return err
		}

		// 重複配送はno-op（PAID→PENDINGへは絶対に戻さない）
		if o.Status == model.OrderStatusPaid {
			return nil
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusPaid); err != nil {
			return err
		}

		u.logger.Info("order marked paid", "order_id", orderID)
		return nil
	})
}

// ParseOrderIDFromReference は相関トークンの先頭フィールド（最初の"-"より前）を
// 注文IDとして読む。"42-1700000000" → 42。
func ParseOrderIDFromReference(ref string) (int64, error) {
	head, _, _ := strings.Cut(ref, "-")
	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid order id %d", id)
	}
	return id, nil
}
