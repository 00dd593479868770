package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 行ロック付きで取得（注文確定のトランザクション内で使う）
	ListByUserIDForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 同一(user, menuitem)は数量加算
	UpsertByUserAndMenuItem(ctx context.Context, userID int64, menuItemID int64, addQty int64, unitPrice int64) error
	// 全削除して消した件数を返す
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
