package model

import "time"

// カートの明細
// unit_priceは追加時点のメニュー価格を必ず保存。
// (user_id, menu_item_id) は1行だけ。
type CartItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;index;uniqueIndex:idx_cart_user_menuitem" json:"user_id"`
	MenuItemID int64     `gorm:"not null;uniqueIndex:idx_cart_user_menuitem" json:"menuitem_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null;column:unit_price" json:"unit_price"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 明細の金額（保存しない導出値）
func (i CartItem) Price() int64 {
	return i.UnitPrice * i.Quantity
}
