package repository

import (
	"context"

	"geraiku/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (model.Address, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	Update(ctx context.Context, address model.Address) error
	Delete(ctx context.Context, addressID int64) error

	// primaryの切り替え。同一Tx内でそのユーザーの他の住所を全て外す
	SetPrimary(ctx context.Context, userID int64, addressID int64) error
}
