package repository

import (
	"context"

	"app/internal/domain/model"
)

// 明細は注文作成時に一括で書き、以後は読むだけ。
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
