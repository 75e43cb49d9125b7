package repository

import (
	"context"
	"errors"

	"geraiku/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
	FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error)
}
