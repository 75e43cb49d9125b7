package repository

import (
	"context"

	"geraiku/internal/domain/model"
)

type MerchantRepository interface {
	FindByID(ctx context.Context, merchantID int64) (model.Merchant, error)
	FindByUserID(ctx context.Context, userID int64) (model.Merchant, error)
}
