package usecase

import (
	"context"
	"net/http"

	repo "restaurant/internal/repository"
)

// CartUsecase は /cart/menu-items の業務ロジックです。
// カートを触れるのはCustomerだけ（Manager / Delivery Crewは403）。
type CartUsecase struct {
	cartRepo repo.CartRepository
	menuRepo repo.MenuItemRepository
}

func NewCartUsecase(cartRepo repo.CartRepository, menuRepo repo.MenuItemRepository) *CartUsecase {
	return &CartUsecase{
		cartRepo: cartRepo,
		menuRepo: menuRepo,
	}
}

// priceはunit_price（追加時点の価格）×数量の導出値。
type CartItemResponse struct {
	ID         int64 `json:"id"`
	MenuItemID int64 `json:"menuitem_id"`
	Quantity   int64 `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
	Price      int64 `json:"price"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	MenuItemID int64
	Quantity   int64
}

func (u *CartUsecase) requireCustomer(caller Caller) error {
	if caller.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !caller.IsCustomer() {
		return NewHTTPError(http.StatusForbidden, "you don't have permissions to perform this action")
	}
	return nil
}

// GetCart は自分のカート明細を返す。
func (u *CartUsecase) GetCart(ctx context.Context, caller Caller) (CartResponse, error) {
	if err := u.requireCustomer(caller); err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, caller.UserID)
}

// AddToCart はカートに追加（同一メニューは数量加算）。
// unit_priceには追加時点のメニュー価格を保存する。
// 所有者は常に呼び出しユーザー（payloadのuserは無視する）。
func (u *CartUsecase) AddToCart(ctx context.Context, caller Caller, in AddCartInput) (CartResponse, error) {
	if err := u.requireCustomer(caller); err != nil {
		return CartResponse{}, err
	}

	fields := map[string]string{}
	if in.MenuItemID < 1 {
		fields["menuitem_id"] = "must be greater than or equal to 1"
	}
	if in.Quantity < 1 {
		fields["quantity"] = "must be greater than or equal to 1"
	}
	if len(fields) > 0 {
		return CartResponse{}, NewValidationError(fields)
	}

	//メニューの存在チェックと価格スナップショット
	item, err := u.menuRepo.FindByID(ctx, in.MenuItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewValidationError(map[string]string{
			"menuitem_id": "menu item does not exist",
		})
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.UpsertByUserAndMenuItem(ctx, caller.UserID, item.ID, in.Quantity, item.Price); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, caller.UserID)
}

// ClearCart は自分のカートを空にする。
// 元々空だったときは404相当（消したのか・何も無かったのかを区別する）。
func (u *CartUsecase) ClearCart(ctx context.Context, caller Caller) error {
	if err := u.requireCustomer(caller); err != nil {
		return err
	}

	deleted, err := u.cartRepo.DeleteByUserID(ctx, caller.UserID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if deleted == 0 {
		return NewHTTPError(http.StatusNotFound, "no cart lines for the specified user")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	items, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Price:      it.Price(),
		})
		total += it.Price()
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
