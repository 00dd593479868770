package model

import "time"

// 注文確定時にカート明細からコピーされる。以後は読み取り専用。
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index;uniqueIndex:idx_order_menuitem" json:"order_id"`
	MenuItemID int64     `gorm:"not null;uniqueIndex:idx_order_menuitem" json:"menuitem_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null;column:unit_price" json:"unit_price"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (i OrderItem) Price() int64 {
	return i.UnitPrice * i.Quantity
}
