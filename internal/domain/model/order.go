package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusDelivered
}

// user_idとtotalは作成後に変更しない。
// 変更できるのはstatusとdelivery_crew_idだけ。
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64       `gorm:"not null;index" json:"user_id"`
	DeliveryCrewID *int64      `gorm:"index" json:"delivery_crew_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Total          int64       `gorm:"not null" json:"total"`
	Date           time.Time   `gorm:"type:date;not null" json:"date"`
	CreatedAt      time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
