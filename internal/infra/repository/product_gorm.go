package repository

import (
	"context"
	"errors"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error) {
	if len(productIDs) == 0 {
		return []model.Product{}, nil
	}
	var items []model.Product
	err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}
