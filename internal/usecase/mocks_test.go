package usecase_test

import (
	"context"
	"strings"
	"testing"

	"geraiku/internal/domain/model"
	"geraiku/internal/gateway/payment"
	repo "geraiku/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	transactions repo.TransactionRepository
	carts        repo.CartRepository
	cartItems    repo.CartItemRepository
	inventory    repo.InventoryRepository
	products     repo.ProductRepository
	merchants    repo.MerchantRepository
	addresses    repo.AddressRepository
	outbox       repo.OutboxRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository             { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *TxReposMock) Transactions() repo.TransactionRepository { return r.transactions }
func (r *TxReposMock) Carts() repo.CartRepository               { return r.carts }
func (r *TxReposMock) CartItems() repo.CartItemRepository       { return r.cartItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository         { return r.products }
func (r *TxReposMock) Merchants() repo.MerchantRepository       { return r.merchants }
func (r *TxReposMock) Addresses() repo.AddressRepository        { return r.addresses }
func (r *TxReposMock) Outbox() repo.OutboxRepository            { return r.outbox }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByTransactionID(ctx context.Context, transactionID int64) (model.Order, error) {
	args := m.Called(ctx, transactionID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListByMerchantID(ctx context.Context, merchantID int64, f repo.MerchantOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, merchantID, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus, patch repo.OrderStatusPatch) (bool, error) {
	args := m.Called(ctx, orderID, from, to, patch)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type TransactionRepoMock struct{ mock.Mock }

func (m *TransactionRepoMock) Create(ctx context.Context, t model.Transaction) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TransactionRepoMock) FindByID(ctx context.Context, transactionID int64) (model.Transaction, error) {
	args := m.Called(ctx, transactionID)
	t, _ := args.Get(0).(model.Transaction)
	return t, args.Error(1)
}

func (m *TransactionRepoMock) FindByExternalID(ctx context.Context, externalID string) (model.Transaction, error) {
	args := m.Called(ctx, externalID)
	t, _ := args.Get(0).(model.Transaction)
	return t, args.Error(1)
}

func (m *TransactionRepoMock) UpdateStatus(ctx context.Context, transactionID int64, from model.TransactionStatus, to model.TransactionStatus, paymentType string) (bool, error) {
	args := m.Called(ctx, transactionID, from, to, paymentType)
	return args.Bool(0), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecrementIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) Increment(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error) {
	args := m.Called(ctx, productIDs)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

type MerchantRepoMock struct{ mock.Mock }

func (m *MerchantRepoMock) FindByID(ctx context.Context, merchantID int64) (model.Merchant, error) {
	args := m.Called(ctx, merchantID)
	mc, _ := args.Get(0).(model.Merchant)
	return mc, args.Error(1)
}

func (m *MerchantRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Merchant, error) {
	args := m.Called(ctx, userID)
	mc, _ := args.Get(0).(model.Merchant)
	return mc, args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	as, _ := args.Get(0).([]model.Address)
	return as, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *AddressRepoMock) SetPrimary(ctx context.Context, userID int64, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, bool, error) {
	args := m.Called(ctx, cartID, productID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Bool(1), args.Error(2)
}

func (m *CartItemRepoMock) Create(ctx context.Context, item model.CartItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int64) error {
	args := m.Called(ctx, cartItemID, quantity)
	return args.Error(0)
}

func (m *CartItemRepoMock) Delete(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

type OutboxRepoMock struct{ mock.Mock }

func (m *OutboxRepoMock) Create(ctx context.Context, row model.NotificationOutbox) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *OutboxRepoMock) ListPending(ctx context.Context, limit int) ([]model.NotificationOutbox, error) {
	args := m.Called(ctx, limit)
	rows, _ := args.Get(0).([]model.NotificationOutbox)
	return rows, args.Error(1)
}

func (m *OutboxRepoMock) MarkDone(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *OutboxRepoMock) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Gateway mocks
// =====================

type PaymentGatewayMock struct{ mock.Mock }

func (m *PaymentGatewayMock) CreateChargeIntent(externalID string, grossAmount int64, lines []payment.ItemLine, cust payment.Customer) (string, error) {
	args := m.Called(externalID, grossAmount, lines, cust)
	return args.String(0), args.Error(1)
}

type WebhookVerifierMock struct{ mock.Mock }

func (m *WebhookVerifierMock) VerifyWebhookSignature(externalID string, statusCode string, grossAmount string, signatureKey string) bool {
	args := m.Called(externalID, statusCode, grossAmount, signatureKey)
	return args.Bool(0)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
