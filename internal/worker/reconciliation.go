// Package worker は孤児PENDING注文の対帳スイープ。
// checkout中にゲートウェイ呼び出しだけが失敗すると、支払い済みなのに
// PENDINGのまま取り残される注文が生まれ得る。ここで定期的に
// ゲートウェイへ問い合わせて事実に合わせる。
package worker

import (
	"context"
	"log/slog"
	"time"

	"app/internal/infra/gateway"
	repo "app/internal/repository"
	"app/internal/usecase"
)

type ReconciliationWorker struct {
	orders    repo.OrderRepository
	gateway   gateway.PaymentGateway
	webhookUC *usecase.WebhookUsecase
	interval  time.Duration
	minAge    time.Duration
	logger    *slog.Logger
}

// DI
func NewReconciliationWorker(
	orders repo.OrderRepository,
	gw gateway.PaymentGateway,
	webhookUC *usecase.WebhookUsecase,
	interval time.Duration,
	logger *slog.Logger,
) *ReconciliationWorker {
	return &ReconciliationWorker{
		orders:    orders,
		gateway:   gw,
		webhookUC: webhookUC,
		interval:  interval,
		minAge:    5 * time.Minute,
		logger:    logger,
	}
}

// Run はctxが閉じるまでintervalごとにスイープする。
func (rw *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("reconciliation worker started", "interval", rw.interval.String())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rw.process(ctx); err != nil {
				rw.logger.Error("reconciliation sweep failed", "error", err)
			}
		}
	}
}

func (rw *ReconciliationWorker) process(ctx context.Context) error {
	cutoff := time.Now().Add(-rw.minAge)

	stuck, err := rw.orders.ListPendingOlderThan(ctx, cutoff, 50)
	if err != nil {
		return err
	}
	if len(stuck) == 0 {
		return nil
	}

	rw.logger.Info("found stale pending orders", "count", len(stuck))

	for _, order := range stuck {
		if order.ExternalReference == "" {
			continue
		}

		payments, err := rw.gateway.SearchPaymentsByReference(ctx, order.ExternalReference)
		if err != nil {
			// このスイープでは諦めて次の周期に任せる
			rw.logger.Warn("payment lookup failed", "order_id", order.ID, "error", err)
			continue
		}

		for _, p := range payments {
			if p.Status != gateway.PaymentStatusApproved {
				continue
			}
			if err := rw.webhookUC.MarkPaidIfPending(ctx, order.ID); err != nil {
				rw.logger.Warn("reconcile update failed", "order_id", order.ID, "error", err)
			}
			break
		}
	}
	return nil
}
