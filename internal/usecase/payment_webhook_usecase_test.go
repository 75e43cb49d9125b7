package usecase_test

import (
	"context"
	"testing"

	"geraiku/internal/domain/model"
	"geraiku/internal/gateway/payment"
	repo "geraiku/internal/repository"
	"geraiku/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newWebhookFixture() (*TxManagerMock, *OrderRepoMock, *OrderItemRepoMock, *TransactionRepoMock, *InventoryRepoMock, *OutboxRepoMock, *WebhookVerifierMock, *usecase.PaymentWebhookUsecase) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	items := new(OrderItemRepoMock)
	transactions := new(TransactionRepoMock)
	inventory := new(InventoryRepoMock)
	outbox := new(OutboxRepoMock)
	verifier := new(WebhookVerifierMock)

	tx.Repos = &TxReposMock{
		orders:       orders,
		orderItems:   items,
		transactions: transactions,
		inventory:    inventory,
		outbox:       outbox,
	}

	uc := usecase.NewPaymentWebhookUsecase(tx, verifier, zap.NewNop())
	return tx, orders, items, transactions, inventory, outbox, verifier, uc
}

func settlementPayload() payment.NotificationPayload {
	return payment.NotificationPayload{
		OrderID:           "ext-1",
		StatusCode:        "200",
		GrossAmount:       "29000.00",
		SignatureKey:      "sig",
		TransactionStatus: "settlement",
		PaymentType:       "qris",
	}
}

func TestPaymentWebhookUsecase_InvalidSignature_NoMutation(t *testing.T) {
	tx, _, _, transactions, _, _, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", "ext-1", "200", "29000.00", "sig").Return(false)

	err := uc.HandleNotification(context.Background(), settlementPayload())
	assertErrContains(t, err, "invalid signature")

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	transactions.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentWebhookUsecase_UnknownStatus(t *testing.T) {
	tx, _, _, _, _, _, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)

	p := settlementPayload()
	p.TransactionStatus = "quantum"

	err := uc.HandleNotification(context.Background(), p)
	assertErrContains(t, err, "unknown transaction status")
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPaymentWebhookUsecase_Settlement_MovesOrderToPaid(t *testing.T) {
	tx, orders, items, transactions, inventory, outbox, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, ExternalID: "ext-1", Status: model.TransactionStatusPending,
	}, nil)
	transactions.On("UpdateStatus", mock.Anything, int64(11), model.TransactionStatusPending, model.TransactionStatusSettlement, "qris").Return(true, nil)
	orders.On("FindByTransactionID", mock.Anything, int64(11)).Return(model.Order{
		ID: 43, OrderNumber: "GK-X", UserID: 7,
		Status:        model.OrderStatusPendingPayment,
		PaymentMethod: model.PaymentMethodOnline,
	}, nil)
	items.On("ListByOrderID", mock.Anything, int64(43)).Return([]model.OrderItem{
		{ProductID: 3, Quantity: 1},
	}, nil)
	inventory.On("DecrementIfEnough", mock.Anything, int64(3), int64(1)).Return(true, nil)
	orders.On("UpdateStatus", mock.Anything, int64(43), model.OrderStatusPendingPayment, model.OrderStatusPaid, mock.MatchedBy(func(p repo.OrderStatusPatch) bool {
		return p.PaidAt != nil
	})).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.HandleNotification(context.Background(), settlementPayload())
	assert.NoError(t, err)

	transactions.AssertExpectations(t)
	orders.AssertExpectations(t)
	inventory.AssertExpectations(t)
}

func TestPaymentWebhookUsecase_Settlement_Replay_NoDoubleDecrement(t *testing.T) {
	tx, orders, _, transactions, inventory, _, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	// すでにsettlement済みのトランザクション
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, ExternalID: "ext-1", Status: model.TransactionStatusSettlement,
	}, nil)

	err := uc.HandleNotification(context.Background(), settlementPayload())
	assert.NoError(t, err)

	transactions.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	inventory.AssertNotCalled(t, "DecrementIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

// 同じ通知が並行して届き、読んだ時点ではどちらもpendingに見えるケース。
// 条件付きUPDATEに負けた側はno-opで抜け、在庫を二重に引かない。
func TestPaymentWebhookUsecase_Settlement_ConcurrentDelivery_LoserIsNoop(t *testing.T) {
	tx, orders, _, transactions, inventory, outbox, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, ExternalID: "ext-1", Status: model.TransactionStatusPending,
	}, nil)
	// 先着の配送がすでにpendingから動かしていた
	transactions.On("UpdateStatus", mock.Anything, int64(11), model.TransactionStatusPending, model.TransactionStatusSettlement, "qris").Return(false, nil)

	err := uc.HandleNotification(context.Background(), settlementPayload())
	assert.NoError(t, err)

	orders.AssertNotCalled(t, "FindByTransactionID", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	inventory.AssertNotCalled(t, "DecrementIfEnough", mock.Anything, mock.Anything, mock.Anything)
	outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentWebhookUsecase_Settlement_StockShortfall_StillPaid(t *testing.T) {
	tx, orders, items, transactions, inventory, outbox, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, Status: model.TransactionStatusPending,
	}, nil)
	transactions.On("UpdateStatus", mock.Anything, int64(11), model.TransactionStatusPending, model.TransactionStatusSettlement, "qris").Return(true, nil)
	orders.On("FindByTransactionID", mock.Anything, int64(11)).Return(model.Order{
		ID: 43, Status: model.OrderStatusPendingPayment,
	}, nil)
	items.On("ListByOrderID", mock.Anything, int64(43)).Return([]model.OrderItem{
		{ProductID: 3, Quantity: 1},
	}, nil)
	// 入金確定後の在庫不足は遷移を止めない
	inventory.On("DecrementIfEnough", mock.Anything, int64(3), int64(1)).Return(false, nil)
	orders.On("UpdateStatus", mock.Anything, int64(43), model.OrderStatusPendingPayment, model.OrderStatusPaid, mock.Anything).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.HandleNotification(context.Background(), settlementPayload())
	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestPaymentWebhookUsecase_Expire_MovesOrderToFailed(t *testing.T) {
	tx, orders, _, transactions, _, outbox, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, Status: model.TransactionStatusPending,
	}, nil)
	transactions.On("UpdateStatus", mock.Anything, int64(11), model.TransactionStatusPending, model.TransactionStatusExpire, "qris").Return(true, nil)
	orders.On("FindByTransactionID", mock.Anything, int64(11)).Return(model.Order{
		ID: 43, Status: model.OrderStatusPendingPayment,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(43), model.OrderStatusPendingPayment, model.OrderStatusFailed, mock.Anything).Return(true, nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	p := settlementPayload()
	p.TransactionStatus = "expire"

	err := uc.HandleNotification(context.Background(), p)
	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestPaymentWebhookUsecase_TransactionWithoutOrder_NoError(t *testing.T) {
	tx, orders, _, transactions, _, _, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, Status: model.TransactionStatusPending,
	}, nil)
	transactions.On("UpdateStatus", mock.Anything, int64(11), model.TransactionStatusPending, model.TransactionStatusSettlement, "qris").Return(true, nil)
	orders.On("FindByTransactionID", mock.Anything, int64(11)).Return(model.Order{}, repo.ErrNotFound)

	// 片割れは運用突き合わせに回すだけで200を返す
	err := uc.HandleNotification(context.Background(), settlementPayload())
	assert.NoError(t, err)
}

func TestPaymentWebhookUsecase_OrderAlreadyMoved_Skipped(t *testing.T) {
	tx, orders, _, transactions, _, outbox, verifier, uc := newWebhookFixture()

	verifier.On("VerifyWebhookSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	tx.On("WithinTx", mock.Anything).Return(nil)
	transactions.On("FindByExternalID", mock.Anything, "ext-1").Return(model.Transaction{
		ID: 11, Status: model.TransactionStatusPending,
	}, nil)
	transactions.On("UpdateStatus", mock.Anything, int64(11), model.TransactionStatusPending, model.TransactionStatusSettlement, "qris").Return(true, nil)
	// 店舗が先にキャンセル済み
	orders.On("FindByTransactionID", mock.Anything, int64(11)).Return(model.Order{
		ID: 43, Status: model.OrderStatusCancelled,
	}, nil)

	err := uc.HandleNotification(context.Background(), settlementPayload())
	assert.NoError(t, err)

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
