package repository

import (
	"context"
	"errors"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"

	"gorm.io/gorm"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

func (r *TransactionGormRepository) Create(ctx context.Context, t model.Transaction) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, transactionID int64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", transactionID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionGormRepository) FindByExternalID(ctx context.Context, externalID string) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// UpdateStatus は条件付きUPDATE。webhookの再配送が同時に届いても
// pendingから動かせるのは先着の一件だけになる。
func (r *TransactionGormRepository) UpdateStatus(ctx context.Context, transactionID int64, from model.TransactionStatus, to model.TransactionStatus, paymentType string) (bool, error) {
	values := map[string]interface{}{"status": to}
	if paymentType != "" {
		values["payment_type"] = paymentType
	}

	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", transactionID, from).
		Updates(values)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
