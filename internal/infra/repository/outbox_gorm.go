package repository

import (
	"context"

	"geraiku/internal/domain/model"

	"gorm.io/gorm"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

func (r *OutboxGormRepository) Create(ctx context.Context, row model.NotificationOutbox) error {
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *OutboxGormRepository) ListPending(ctx context.Context, limit int) ([]model.NotificationOutbox, error) {
	var rows []model.NotificationOutbox
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return []model.NotificationOutbox{}, err
	}
	return rows, nil
}

func (r *OutboxGormRepository) MarkDone(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.NotificationOutbox{}).
		Where("id IN ?", ids).
		Update("status", model.OutboxStatusDone).Error
}

func (r *OutboxGormRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.NotificationOutbox{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
