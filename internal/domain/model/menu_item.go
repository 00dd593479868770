package model

import "time"

// 価格は最小通貨単位のint64で持つ
type MenuItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"title"`
	Price      int64     `gorm:"not null" json:"price"`
	Featured   bool      `gorm:"not null;default:false" json:"featured"`
	CategoryID int64     `gorm:"not null;index" json:"category_id"`
	Category   Category  `gorm:"foreignKey:CategoryID" json:"category"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
