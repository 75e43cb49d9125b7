package repository

import (
	"context"

	"geraiku/internal/domain/model"
)

type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) (int64, error)
	FindByID(ctx context.Context, transactionID int64) (model.Transaction, error)
	FindByExternalID(ctx context.Context, externalID string) (model.Transaction, error)
	// UpdateStatus は status が from のままの行だけ更新する。先着者がいれば (false, nil)。
	UpdateStatus(ctx context.Context, transactionID int64, from model.TransactionStatus, to model.TransactionStatus, paymentType string) (bool, error)
}
