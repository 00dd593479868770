package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

// マネージャー用の注文一覧
type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListByDeliveryCrewID(ctx context.Context, crewID int64, page int, limit int) ([]model.Order, int64, error)
	ListAll(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateTotal(ctx context.Context, orderID int64, total int64) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateDeliveryCrew(ctx context.Context, orderID int64, crewID *int64) error
	DeleteByID(ctx context.Context, orderID int64) error
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
