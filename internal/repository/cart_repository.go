package repository

import (
	"context"

	"geraiku/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	// 明細を全削除
	Clear(ctx context.Context, cartID int64) error
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, bool, error)
	Create(ctx context.Context, item model.CartItem) (int64, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, quantity int64) error
	Delete(ctx context.Context, cartItemID int64) error
}
