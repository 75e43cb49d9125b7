package repository

import (
	"context"
	"time"

	"geraiku/internal/domain/model"
)

type MerchantOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

// ステータス更新と同時に書くフィールド。nilは触らない。
type OrderStatusPatch struct {
	PaidAt         *time.Time
	CompletedAt    *time.Time
	TrackingNumber *string
	MerchantNotes  *string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByTransactionID(ctx context.Context, transactionID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListByMerchantID(ctx context.Context, merchantID int64, f MerchantOrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	// UpdateStatus は status が from のままの行だけを更新する条件付きUPDATE。
	// 別の書き込みが先に動かしていた場合は (false, nil) を返す。
	UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus, patch OrderStatusPatch) (bool, error)

	//同じキーなら同じ結果を返す
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
