package model

import "time"

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
