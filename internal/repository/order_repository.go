package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	//ゲートウェイへ渡した相関トークンを保存する（注文作成と同一トランザクションで呼ぶ）
	SetExternalReference(ctx context.Context, orderID int64, ref string) error

	//指定時刻より前に作成されたPENDINGの注文（対帳スイープ用）
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
}
