package repository

import (
	"context"
	"errors"

	"restaurant/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict") //unique制約違反
)

// 一覧検索
type MenuItemListQuery struct {
	Page      int
	Limit     int
	Category  string
	FromPrice *int64
	ToPrice   *int64
	Featured  *bool
	Search    string
	Sort      string
}

// メニューの永続化（保存・取得）だけを約束。
type MenuItemRepository interface {
	List(ctx context.Context, q MenuItemListQuery) ([]model.MenuItem, int64, error)
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)

	Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error)
	Update(ctx context.Context, item model.MenuItem) error
	DeleteByID(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	ListAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
}
