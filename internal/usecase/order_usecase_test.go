package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderUsecase(orders *OrderRepoMock, orderItems *OrderItemRepoMock, carts *CartRepoMock, users *UserRepoMock) (*usecase.OrderUsecase, *TxManagerMock) {
	tx := &TxManagerMock{
		Repos: &TxReposMock{
			orders:     orders,
			orderItems: orderItems,
			carts:      carts,
			users:      users,
		},
	}
	tx.On("WithinTx", mock.Anything).Return(nil).Maybe()
	return usecase.NewOrderUsecase(tx, users), tx
}

func requireStatus(t *testing.T, err error, want int) *usecase.HTTPError {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != want {
		t.Fatalf("status=%d want=%d (%s)", he.Status, want, he.Message)
	}
	return he
}

func TestPlaceOrder_MovesCartIntoOrder(t *testing.T) {
	ctx := context.Background()
	customer := usecase.Caller{UserID: 7}

	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	carts := &CartRepoMock{}
	uc, _ := newOrderUsecase(orders, orderItems, carts, &UserRepoMock{})

	//カート: (A unit10 qty2) + (B unit5 qty1) → total 25
	cart := []model.CartItem{
		{ID: 1, UserID: 7, MenuItemID: 100, Quantity: 2, UnitPrice: 10},
		{ID: 2, UserID: 7, MenuItemID: 200, Quantity: 1, UnitPrice: 5},
	}
	carts.On("ListByUserIDForUpdate", mock.Anything, int64(7)).Return(cart, nil)

	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		//作成時はtotal=0・PENDING・delivery_crew未割り当て
		return o.UserID == 7 && o.Total == 0 && o.Status == model.OrderStatusPending && o.DeliveryCrewID == nil
	})).Return(int64(42), nil)

	orderItems.On("CreateBulk", mock.Anything, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
		if len(items) != 2 {
			return false
		}
		//スナップショットがそのままコピーされること
		return items[0].MenuItemID == 100 && items[0].UnitPrice == 10 && items[0].Quantity == 2 &&
			items[1].MenuItemID == 200 && items[1].UnitPrice == 5 && items[1].Quantity == 1
	})).Return(nil)

	orders.On("UpdateTotal", mock.Anything, int64(42), int64(25)).Return(nil)
	carts.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(2), nil)

	out, err := uc.PlaceOrder(ctx, customer)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, int64(25), out.Total)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Len(t, out.Items, 2)

	orders.AssertExpectations(t)
	orderItems.AssertExpectations(t)
	carts.AssertExpectations(t)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	carts := &CartRepoMock{}
	uc, _ := newOrderUsecase(orders, orderItems, carts, &UserRepoMock{})

	carts.On("ListByUserIDForUpdate", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := uc.PlaceOrder(ctx, usecase.Caller{UserID: 7})

	//空カートは404。注文も明細も作らない。
	requireStatus(t, err, http.StatusNotFound)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_NonCustomerForbidden(t *testing.T) {
	ctx := context.Background()
	uc, _ := newOrderUsecase(&OrderRepoMock{}, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	_, err := uc.PlaceOrder(ctx, usecase.Caller{UserID: 1, IsManager: true})
	requireStatus(t, err, http.StatusForbidden)

	_, err = uc.PlaceOrder(ctx, usecase.Caller{UserID: 2, IsDeliveryCrew: true})
	requireStatus(t, err, http.StatusForbidden)
}

func TestGetOrder_NonOwnerForbidden(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7}, nil)

	//他人の注文は404ではなく403（本文は返さない）
	_, err := uc.GetOrder(ctx, usecase.Caller{UserID: 8}, 42)
	requireStatus(t, err, http.StatusForbidden)

	//Managerでも所有者でなければ同じ
	_, err = uc.GetOrder(ctx, usecase.Caller{UserID: 1, IsManager: true}, 42)
	requireStatus(t, err, http.StatusForbidden)
}

func TestGetOrder_OwnerGetsItems(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	uc, _ := newOrderUsecase(orders, orderItems, &CartRepoMock{}, &UserRepoMock{})

	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7, Status: model.OrderStatusPending, Total: 25}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ID: 1, OrderID: 42, MenuItemID: 100, Quantity: 2, UnitPrice: 10},
	}, nil)

	out, err := uc.GetOrder(ctx, usecase.Caller{UserID: 7}, 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(25), out.Total)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(20), out.Items[0].Price)
}

func TestUpdateOrder_ManagerSetsStatusAndCrew(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	users := &UserRepoMock{}
	uc, _ := newOrderUsecase(orders, orderItems, &CartRepoMock{}, users)

	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7, Status: model.OrderStatusPending}, nil)

	crewID := int64(9)
	users.On("FindByID", mock.Anything, crewID).Return(&model.User{
		ID:     crewID,
		Groups: []model.Group{{Name: model.GroupDeliveryCrew}},
	}, nil)

	orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusDelivered).Return(nil)
	orders.On("UpdateDeliveryCrew", mock.Anything, int64(42), &crewID).Return(nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{}, nil)

	status := string(model.OrderStatusDelivered)
	out, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 1, IsManager: true}, 42, usecase.OrderPatch{
		Status:         &status,
		DeliveryCrewID: &crewID,
	}, true)

	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusDelivered), out.Status)
	assert.Equal(t, &crewID, out.DeliveryCrewID)
	orders.AssertExpectations(t)
}

func TestUpdateOrder_ManagerCrewMustBeDeliveryCrew(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	users := &UserRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, users)

	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7}, nil)

	//Delivery Crewロールを持たないユーザーには割り当てられない
	crewID := int64(9)
	users.On("FindByID", mock.Anything, crewID).Return(&model.User{ID: crewID}, nil)

	he := requireStatus(t, func() error {
		_, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 1, IsManager: true}, 42, usecase.OrderPatch{DeliveryCrewID: &crewID}, true)
		return err
	}(), http.StatusBadRequest)
	assert.Contains(t, he.Fields, "delivery_crew")
	orders.AssertNotCalled(t, "UpdateDeliveryCrew", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrder_CrewStatusOnlyWhenAssigned(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	uc, _ := newOrderUsecase(orders, orderItems, &CartRepoMock{}, &UserRepoMock{})

	crewID := int64(9)
	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7, DeliveryCrewID: &crewID}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusDelivered).Return(nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{}, nil)

	status := string(model.OrderStatusDelivered)
	out, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 9, IsDeliveryCrew: true}, 42, usecase.OrderPatch{Status: &status}, true)

	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusDelivered), out.Status)
}

func TestUpdateOrder_CrewNotAssignedForbidden(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	otherCrew := int64(5)
	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7, DeliveryCrewID: &otherCrew}, nil)

	status := string(model.OrderStatusDelivered)
	_, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 9, IsDeliveryCrew: true}, 42, usecase.OrderPatch{Status: &status}, true)

	requireStatus(t, err, http.StatusForbidden)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrder_CrewCannotTouchDeliveryCrew(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	crewID := int64(9)
	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7, DeliveryCrewID: &crewID}, nil)

	//自分担当の注文でもdelivery_crewは触れない（黙って適用されたりしない）
	_, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 9, IsDeliveryCrew: true}, 42, usecase.OrderPatch{DeliveryCrewID: &crewID}, true)

	requireStatus(t, err, http.StatusForbidden)
	orders.AssertNotCalled(t, "UpdateDeliveryCrew", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrder_CustomerForbidden(t *testing.T) {
	ctx := context.Background()
	uc, _ := newOrderUsecase(&OrderRepoMock{}, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	status := string(model.OrderStatusDelivered)
	_, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 7}, 42, usecase.OrderPatch{Status: &status}, true)

	requireStatus(t, err, http.StatusForbidden)
}

func TestUpdateOrder_PutRequiresAllRoleFields(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 7}, nil)

	//PUT（partial=false）はManagerの全フィールド必須
	status := string(model.OrderStatusDelivered)
	_, err := uc.UpdateOrder(ctx, usecase.Caller{UserID: 1, IsManager: true}, 42, usecase.OrderPatch{Status: &status}, false)

	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteOrder_ManagerOnly(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	//Customerには消させない
	err := uc.DeleteOrder(ctx, usecase.Caller{UserID: 7}, 42)
	requireStatus(t, err, http.StatusForbidden)

	//Delivery Crewにも消させない
	err = uc.DeleteOrder(ctx, usecase.Caller{UserID: 9, IsDeliveryCrew: true}, 42)
	requireStatus(t, err, http.StatusForbidden)

	orders.On("DeleteByID", mock.Anything, int64(42)).Return(nil)
	err = uc.DeleteOrder(ctx, usecase.Caller{UserID: 1, IsManager: true}, 42)
	assert.NoError(t, err)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	uc, _ := newOrderUsecase(orders, &OrderItemRepoMock{}, &CartRepoMock{}, &UserRepoMock{})

	orders.On("DeleteByID", mock.Anything, int64(99)).Return(repo.ErrNotFound)

	err := uc.DeleteOrder(ctx, usecase.Caller{UserID: 1, IsManager: true}, 99)
	requireStatus(t, err, http.StatusNotFound)
}

func TestListOrders_ScopeByRole(t *testing.T) {
	ctx := context.Background()

	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	uc, _ := newOrderUsecase(orders, orderItems, &CartRepoMock{}, &UserRepoMock{})

	orderItems.On("ListByOrderID", mock.Anything, mock.Anything).Return([]model.OrderItem{}, nil)

	//Customerは自分の分だけ
	orders.On("ListByUserID", mock.Anything, int64(7), 1, 50).Return([]model.Order{{ID: 1, UserID: 7}}, int64(1), nil)
	out, err := uc.ListOrders(ctx, usecase.Caller{UserID: 7}, usecase.ListOrdersInput{})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)

	//Delivery Crewは担当分だけ
	orders.On("ListByDeliveryCrewID", mock.Anything, int64(9), 1, 50).Return([]model.Order{}, int64(0), nil)
	out, err = uc.ListOrders(ctx, usecase.Caller{UserID: 9, IsDeliveryCrew: true}, usecase.ListOrdersInput{})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)

	//Managerは全件
	orders.On("ListAll", mock.Anything, mock.Anything).Return([]model.Order{{ID: 1}, {ID: 2}}, int64(2), nil)
	out, err = uc.ListOrders(ctx, usecase.Caller{UserID: 1, IsManager: true}, usecase.ListOrdersInput{})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
}
