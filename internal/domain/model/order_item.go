package model

import "time"

// 注文明細。Orderと同一トランザクションで作成され、以後は不変。
// UnitPriceCents は購入時点の価格スナップショット。
type OrderItem struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64     `gorm:"not null;index" json:"order_id"`
	ProductID      int64     `gorm:"not null;index" json:"product_id"`
	Quantity       int64     `gorm:"not null" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
