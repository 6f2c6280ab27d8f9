package model

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

// 注文。checkout開始時にPENDINGで作成され、
// 承認済みwebhook通知によってのみPAIDへ遷移する（PAID→PENDINGへは戻らない）。
type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64       `gorm:"not null;index" json:"user_id"`
	Status     OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalCents int64       `gorm:"not null" json:"total_cents"`
	// ゲートウェイへ渡した "{orderID}-{unixTimestamp}" 形式の相関トークン。
	ExternalReference string    `gorm:"type:varchar(64);index" json:"-"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}
