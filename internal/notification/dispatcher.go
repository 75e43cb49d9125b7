package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepBatchSize = 50

// StatusEvent はRedisのチャンネルに流すペイロード。
// クライアントのステータス更新はこれを購読する（正しさはあくまでサーバ側の書き込み）。
type StatusEvent struct {
	OrderID     int64             `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      model.OrderStatus `json:"status"`
	Label       string            `json:"label"`
}

// Dispatcher はoutboxをsweepしてメール送信とRedis publishを行う。
// すべてbest-effort：失敗は記録して次のsweepで再試行、注文側の遷移は巻き戻さない。
type Dispatcher struct {
	outbox   repo.OutboxRepository
	mailer   Mailer
	rdb      *redis.Client
	log      *zap.Logger
	interval time.Duration
}

func NewDispatcher(outbox repo.OutboxRepository, mailer Mailer, rdb *redis.Client, log *zap.Logger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		outbox:   outbox,
		mailer:   mailer,
		rdb:      rdb,
		log:      log,
		interval: interval,
	}
}

// Run はctxが閉じるまでsweepし続ける。goroutineで起動する。
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Sweep(ctx); err != nil {
				d.log.Error("notification sweep failed", zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) Sweep(ctx context.Context) error {
	rows, err := d.outbox.ListPending(ctx, sweepBatchSize)
	if err != nil {
		return err
	}

	var done []int64
	for _, row := range rows {
		if err := d.deliver(ctx, row); err != nil {
			d.log.Warn("notification delivery failed, will retry",
				zap.Int64("outbox_id", row.ID),
				zap.String("order_number", row.OrderNumber),
				zap.Error(err))
			if err := d.outbox.IncrementAttempts(ctx, row.ID); err != nil {
				d.log.Error("outbox attempts update failed", zap.Int64("outbox_id", row.ID), zap.Error(err))
			}
			continue
		}
		done = append(done, row.ID)
	}

	return d.outbox.MarkDone(ctx, done)
}

func (d *Dispatcher) deliver(ctx context.Context, row model.NotificationOutbox) error {
	d.publish(ctx, row)
	return d.mailer.SendStatusChange(row.RecipientEmail, row.OrderNumber, row.OldStatus, row.NewStatus)
}

func (d *Dispatcher) publish(ctx context.Context, row model.NotificationOutbox) {
	if d.rdb == nil {
		return
	}

	payload, err := json.Marshal(StatusEvent{
		OrderID:     row.OrderID,
		OrderNumber: row.OrderNumber,
		Status:      row.NewStatus,
		Label:       row.NewStatus.Meta().Label,
	})
	if err != nil {
		return
	}

	channel := fmt.Sprintf("order-status:%d", row.UserID)
	if err := d.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		d.log.Warn("status publish failed", zap.String("channel", channel), zap.Error(err))
	}
}
