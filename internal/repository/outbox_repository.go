package repository

import (
	"context"

	"geraiku/internal/domain/model"
)

type OutboxRepository interface {
	Create(ctx context.Context, row model.NotificationOutbox) error
	ListPending(ctx context.Context, limit int) ([]model.NotificationOutbox, error)
	MarkDone(ctx context.Context, ids []int64) error
	IncrementAttempts(ctx context.Context, id int64) error
}
