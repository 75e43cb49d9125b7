package repository

import (
	"context"

	repo "geraiku/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
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

func (r *txReposGorm) Orders() repo.OrderRepository             { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *txReposGorm) Transactions() repo.TransactionRepository { return r.transactions }
func (r *txReposGorm) Carts() repo.CartRepository               { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository       { return r.cartItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository         { return r.products }
func (r *txReposGorm) Merchants() repo.MerchantRepository       { return r.merchants }
func (r *txReposGorm) Addresses() repo.AddressRepository        { return r.addresses }
func (r *txReposGorm) Outbox() repo.OutboxRepository            { return r.outbox }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:       NewOrderGormRepository(tx),
			orderItems:   NewOrderItemGormRepository(tx),
			transactions: NewTransactionGormRepository(tx),
			carts:        NewCartGormRepository(tx),
			cartItems:    NewCartItemGormRepository(tx),
			inventory:    NewInventoryGormRepository(tx),
			products:     NewProductGormRepository(tx),
			merchants:    NewMerchantGormRepository(tx),
			addresses:    NewAddressGormRepository(tx),
			outbox:       NewOutboxGormRepository(tx),
		}
		return fn(r)
	})
}
