package usecase_test

import (
	"context"
	"testing"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"
	"geraiku/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newStatusFixture() (*TxManagerMock, *OrderRepoMock, *OrderItemRepoMock, *InventoryRepoMock, *MerchantRepoMock, *OutboxRepoMock, *usecase.OrderStatusUsecase) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	items := new(OrderItemRepoMock)
	inventory := new(InventoryRepoMock)
	merchants := new(MerchantRepoMock)
	outbox := new(OutboxRepoMock)

	tx.Repos = &TxReposMock{
		orders:     orders,
		orderItems: items,
		inventory:  inventory,
		merchants:  merchants,
		outbox:     outbox,
	}

	uc := usecase.NewOrderStatusUsecase(tx, zap.NewNop())
	return tx, orders, items, inventory, merchants, outbox, uc
}

func TestOrderStatusUsecase_MerchantUpdateStatus_InvalidStatus(t *testing.T) {
	_, _, _, _, _, _, uc := newStatusFixture()

	err := uc.MerchantUpdateStatus(context.Background(), 1, 1, usecase.MerchantUpdateStatusInput{Status: "teleported"})
	assertErrContains(t, err, "invalid status")
}

func TestOrderStatusUsecase_MerchantUpdateStatus_NotOwner(t *testing.T) {
	tx, orders, _, _, merchants, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5, Status: model.OrderStatusProcessing,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 999}, nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "ready_to_ship"})
	assertErrContains(t, err, "forbidden")
}

func TestOrderStatusUsecase_MerchantUpdateStatus_InvalidTransition(t *testing.T) {
	tx, orders, _, _, merchants, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5, Status: model.OrderStatusCompleted,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "shipped"})
	assertErrContains(t, err, "invalid transition")
}

func TestOrderStatusUsecase_MerchantUpdateStatus_PaidCommitsStock(t *testing.T) {
	tx, orders, items, inventory, merchants, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, OrderNumber: "GK-X", UserID: 7, MerchantID: 5,
		Status:        model.OrderStatusPendingPayment,
		PaymentMethod: model.PaymentMethodCashAtStore,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)
	items.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ProductID: 3, Quantity: 2},
	}, nil)
	inventory.On("DecrementIfEnough", mock.Anything, int64(3), int64(2)).Return(true, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPendingPayment, model.OrderStatusPaid, mock.MatchedBy(func(p repo.OrderStatusPatch) bool {
		return p.PaidAt != nil
	})).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.MatchedBy(func(row model.NotificationOutbox) bool {
		return row.OrderID == 10 &&
			row.OldStatus == model.OrderStatusPendingPayment &&
			row.NewStatus == model.OrderStatusPaid
	})).Return(nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "paid"})
	assert.NoError(t, err)

	inventory.AssertExpectations(t)
	orders.AssertExpectations(t)
	outbox.AssertExpectations(t)
}

func TestOrderStatusUsecase_MerchantUpdateStatus_PaidOutOfStock(t *testing.T) {
	tx, orders, items, inventory, merchants, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5, Status: model.OrderStatusPendingPayment,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)
	items.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ProductID: 3, Quantity: 2},
	}, nil)
	inventory.On("DecrementIfEnough", mock.Anything, int64(3), int64(2)).Return(false, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPendingPayment, model.OrderStatusPaid, mock.Anything).Return(true, nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "paid"})
	assertErrContains(t, err, "out of stock")
}

func TestOrderStatusUsecase_MerchantUpdateStatus_ShippedRequiresTracking(t *testing.T) {
	tx, orders, _, _, merchants, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5,
		Status:         model.OrderStatusReadyToShip,
		DeliveryMethod: model.DeliveryMethodDelivery,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "shipped"})
	assertErrContains(t, err, "tracking number is required")
}

func TestOrderStatusUsecase_MerchantUpdateStatus_ShippedWithTracking(t *testing.T) {
	tx, orders, _, _, merchants, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5,
		Status:         model.OrderStatusReadyToShip,
		DeliveryMethod: model.DeliveryMethodDelivery,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusReadyToShip, model.OrderStatusShipped, mock.MatchedBy(func(p repo.OrderStatusPatch) bool {
		return p.TrackingNumber != nil && *p.TrackingNumber == "JNE123"
	})).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{
		Status:         "shipped",
		TrackingNumber: "JNE123",
	})
	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestOrderStatusUsecase_MerchantUpdateStatus_DeliveryCannotSkipShipped(t *testing.T) {
	tx, orders, _, _, merchants, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5,
		Status:         model.OrderStatusReadyToShip,
		DeliveryMethod: model.DeliveryMethodDelivery,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "delivered"})
	assertErrContains(t, err, "must be shipped before delivered")
}

func TestOrderStatusUsecase_MerchantUpdateStatus_PickupReadyToShipToDelivered(t *testing.T) {
	tx, orders, _, _, merchants, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5,
		Status:         model.OrderStatusReadyToShip,
		DeliveryMethod: model.DeliveryMethodPickup,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusReadyToShip, model.OrderStatusDelivered, mock.Anything).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "delivered"})
	assert.NoError(t, err)
}

func TestOrderStatusUsecase_CustomerCancel_OtherUsersOrderHidden(t *testing.T) {
	tx, orders, _, _, _, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 99, Status: model.OrderStatusProcessing,
	}, nil)

	err := uc.CustomerCancel(context.Background(), 7, 10)
	assertErrContains(t, err, "not found")
}

func TestOrderStatusUsecase_CustomerCancel_ProcessingRestocks(t *testing.T) {
	tx, orders, items, inventory, _, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 7, Status: model.OrderStatusProcessing,
	}, nil)
	items.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ProductID: 3, Quantity: 2},
		{ProductID: 4, Quantity: 1},
	}, nil)
	inventory.On("Increment", mock.Anything, int64(3), int64(2)).Return(nil)
	inventory.On("Increment", mock.Anything, int64(4), int64(1)).Return(nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusProcessing, model.OrderStatusCancelled, mock.Anything).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.CustomerCancel(context.Background(), 7, 10)
	assert.NoError(t, err)
	inventory.AssertExpectations(t)
}

func TestOrderStatusUsecase_CustomerCancel_PendingPaymentNoRestock(t *testing.T) {
	tx, orders, _, inventory, _, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 7, Status: model.OrderStatusPendingPayment,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPendingPayment, model.OrderStatusCancelled, mock.Anything).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.CustomerCancel(context.Background(), 7, 10)
	assert.NoError(t, err)

	// 在庫確保前なので戻し処理は走らない
	inventory.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

// 読んだ後に別の書き込み（例：決済webhookのpending_payment→paid）が先に
// 動かしていた場合、条件付きUPDATEが負けて後着は409で弾かれる。
// 在庫には触らないので「引いたまま戻らない」状態にはならない。
func TestOrderStatusUsecase_CustomerCancel_ConcurrentUpdateRejected(t *testing.T) {
	tx, orders, _, inventory, _, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 7, Status: model.OrderStatusPendingPayment,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPendingPayment, model.OrderStatusCancelled, mock.Anything).Return(false, nil)

	err := uc.CustomerCancel(context.Background(), 7, 10)
	assertErrContains(t, err, "updated concurrently")

	inventory.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
	inventory.AssertNotCalled(t, "DecrementIfEnough", mock.Anything, mock.Anything, mock.Anything)
	outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderStatusUsecase_MerchantUpdateStatus_ConcurrentUpdateRejected(t *testing.T) {
	tx, orders, _, inventory, merchants, outbox, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, MerchantID: 5, Status: model.OrderStatusProcessing,
	}, nil)
	merchants.On("FindByID", mock.Anything, int64(5)).Return(model.Merchant{ID: 5, UserID: 1}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusProcessing, model.OrderStatusReadyToShip, mock.Anything).Return(false, nil)

	err := uc.MerchantUpdateStatus(context.Background(), 1, 10, usecase.MerchantUpdateStatusInput{Status: "ready_to_ship"})
	assertErrContains(t, err, "updated concurrently")

	inventory.AssertNotCalled(t, "DecrementIfEnough", mock.Anything, mock.Anything, mock.Anything)
	outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderStatusUsecase_CustomerCancel_ShippedNotCancellable(t *testing.T) {
	tx, orders, _, _, _, _, uc := newStatusFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 7, Status: model.OrderStatusShipped,
	}, nil)

	err := uc.CustomerCancel(context.Background(), 7, 10)
	assertErrContains(t, err, "can no longer be cancelled")
}
