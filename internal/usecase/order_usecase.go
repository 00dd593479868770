package usecase

import (
	"context"
	"net/http"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	userRepo repo.UserRepository
}

func NewOrderUsecase(tx repo.TransactionManager, userRepo repo.UserRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, userRepo: userRepo}
}

type OrderItemOutput struct {
	MenuItemID int64 `json:"menuitem_id"`
	Quantity   int64 `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
	Price      int64 `json:"price"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	DeliveryCrewID *int64            `json:"delivery_crew_id"`
	Status         string            `json:"status"`
	Total          int64             `json:"total"`
	Date           string            `json:"date"`
	Items          []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
}

// PUT/PATCHの入力。ロールごとに触れるフィールドが違う。
type OrderPatch struct {
	Status         *string
	DeliveryCrewID *int64
}

type ListOrdersInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

// PlaceOrder はカートを注文へ移す（コピーではなく移動）。
// 取得〜作成〜カート削除までを1トランザクションで行い、
// カート明細は行ロックして同一ユーザーの二重確定を防ぐ。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, caller Caller) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !caller.IsCustomer() {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "you don't have permissions to perform this action")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cartItems, err := r.Carts().ListByUserIDForUpdate(ctx, caller.UserID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//空カートでは注文を作らない（sourceに合わせて404）
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusNotFound, "no items in the cart")
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:    caller.UserID,
			Status:    model.OrderStatusPending,
			Total:     0,
			Date:      now,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート明細のスナップショットをそのままコピーする
		//メニューの現在価格は読み直さない
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var total int64 = 0
		for _, ci := range cartItems {
			orderItems = append(orderItems, model.OrderItem{
				MenuItemID: ci.MenuItemID,
				Quantity:   ci.Quantity,
				UnitPrice:  ci.UnitPrice,
				CreatedAt:  now,
			})
			total += ci.Price()
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().UpdateTotal(ctx, orderID, total); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートは空にする（移動なので戻せない）
		if _, err := r.Carts().DeleteByUserID(ctx, caller.UserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:     orderID,
			UserID: caller.UserID,
			Status: model.OrderStatusPending,
			Total:  total,
			Date:   now,
		}
		out = toOrderOutput(created, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListOrders はロールで見える範囲が変わる。
// Manager: 全件（status/user絞り込み可） / Delivery Crew: 自分担当分 / Customer: 自分の分
func (u *OrderUsecase) ListOrders(ctx context.Context, caller Caller, in ListOrdersInput) (OrderListOutput, error) {
	if caller.UserID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 50
	}

	var outs OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var orders []model.Order
		var total int64
		var err error

		switch {
		case caller.IsManager:
			orders, total, err = r.Orders().ListAll(ctx, repo.OrderListFilter{
				Page:   in.Page,
				Limit:  in.Limit,
				Status: in.Status,
				UserID: in.UserID,
			})
		case caller.IsDeliveryCrew:
			orders, total, err = r.Orders().ListByDeliveryCrewID(ctx, caller.UserID, in.Page, in.Limit)
		default:
			orders, total, err = r.Orders().ListByUserID(ctx, caller.UserID, in.Page, in.Limit)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, toOrderOutput(o, lines))
		}
		outs = OrderListOutput{Items: items, Total: total}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return outs, nil
}

// GetOrder は所有者にだけ返す。
// 所有者以外は404ではなく403（sourceの挙動を保存。Managerでも403になる）。
func (u *OrderUsecase) GetOrder(ctx context.Context, caller Caller, orderID int64) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != caller.UserID {
			return NewHTTPError(http.StatusForbidden, "you don't have permission to access this resource")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// UpdateOrder のステートマシン:
//   - Manager: statusとdelivery_crewを変更できる。delivery_crewは
//     Delivery Crewロールを持つユーザーでなければならない。
//   - Delivery Crew: statusのみ、かつ自分に割り当てられた注文だけ。
//     delivery_crewを触ろうとしたら403（黙って無視しない）。
//   - それ以外: 403。
//
// partial=false（PUT）はそのロールが見えるフィールドを全部要求する。
func (u *OrderUsecase) UpdateOrder(ctx context.Context, caller Caller, orderID int64, patch OrderPatch, partial bool) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !caller.IsManager && !caller.IsDeliveryCrew {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "you don't have permissions to perform this action")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if caller.IsManager {
			if err := u.applyManagerPatch(ctx, r, &o, patch, partial); err != nil {
				return err
			}
		} else {
			if err := u.applyCrewPatch(ctx, r, caller, &o, patch, partial); err != nil {
				return err
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) applyManagerPatch(ctx context.Context, r repo.TxRepos, o *model.Order, patch OrderPatch, partial bool) error {
	if !partial && (patch.Status == nil || patch.DeliveryCrewID == nil) {
		return NewValidationError(map[string]string{
			"status":        "required",
			"delivery_crew": "required",
		})
	}

	if patch.Status != nil {
		st := model.OrderStatus(*patch.Status)
		if !st.Valid() {
			return NewValidationError(map[string]string{"status": "invalid status"})
		}
		if err := r.Orders().UpdateStatus(ctx, o.ID, st); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.Status = st
	}

	if patch.DeliveryCrewID != nil {
		//割り当て先はDelivery Crewロールを持っていること
		crew, err := r.Users().FindByID(ctx, *patch.DeliveryCrewID)
		if err == repo.ErrNotFound {
			return NewValidationError(map[string]string{"delivery_crew": "user does not exist"})
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !crew.IsDeliveryCrew() {
			return NewValidationError(map[string]string{"delivery_crew": "user is not in the delivery crew group"})
		}

		if err := r.Orders().UpdateDeliveryCrew(ctx, o.ID, patch.DeliveryCrewID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.DeliveryCrewID = patch.DeliveryCrewID
	}

	return nil
}

func (u *OrderUsecase) applyCrewPatch(ctx context.Context, r repo.TxRepos, caller Caller, o *model.Order, patch OrderPatch, partial bool) error {
	//delivery_crewは触らせない
	if patch.DeliveryCrewID != nil {
		return NewHTTPError(http.StatusForbidden, "delivery crew can only update the order status")
	}
	//自分に割り当てられた注文だけ
	if o.DeliveryCrewID == nil || *o.DeliveryCrewID != caller.UserID {
		return NewHTTPError(http.StatusForbidden, "order is not assigned to you")
	}
	if !partial && patch.Status == nil {
		return NewValidationError(map[string]string{"status": "required"})
	}

	if patch.Status != nil {
		st := model.OrderStatus(*patch.Status)
		if !st.Valid() {
			return NewValidationError(map[string]string{"status": "invalid status"})
		}
		if err := r.Orders().UpdateStatus(ctx, o.ID, st); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.Status = st
	}

	return nil
}

// DeleteOrder はManager限定。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, caller Caller, orderID int64) error {
	if caller.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !caller.IsManager {
		return NewHTTPError(http.StatusForbidden, "you don't have permissions to perform this action")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().DeleteByID(ctx, orderID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	return err
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Price:      it.Price(),
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		DeliveryCrewID: o.DeliveryCrewID,
		Status:         string(o.Status),
		Total:          o.Total,
		Date:           o.Date.Format("2006-01-02"),
		Items:          outItems,
	}
}
