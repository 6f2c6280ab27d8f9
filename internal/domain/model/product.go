package model

import "time"

// 商品。管理ツール（スコープ外）以外からは変更されない。
// PriceCents はセンタボ単位（BRL、小数2桁固定）。
type Product struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	ImageURL   string    `gorm:"type:varchar(200)" json:"image_url"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
