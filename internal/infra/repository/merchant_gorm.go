package repository

import (
	"context"
	"errors"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"

	"gorm.io/gorm"
)

type MerchantGormRepository struct {
	db *gorm.DB
}

func NewMerchantGormRepository(db *gorm.DB) *MerchantGormRepository {
	return &MerchantGormRepository{db: db}
}

func (r *MerchantGormRepository) FindByID(ctx context.Context, merchantID int64) (model.Merchant, error) {
	var m model.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", merchantID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Merchant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Merchant{}, err
	}
	return m, nil
}

func (r *MerchantGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Merchant, error) {
	var m model.Merchant
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Merchant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Merchant{}, err
	}
	return m, nil
}
