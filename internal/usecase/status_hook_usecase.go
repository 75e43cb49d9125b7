package usecase

import (
	"context"
	"net/http"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"

	"go.uber.org/zap"
)

// DBトリガ経由の注文ステータス変更フック。
// 変更をoutboxに積むだけで、送信自体はディスパッチャに任せる。
type StatusHookUsecase struct {
	outbox repo.OutboxRepository
	log    *zap.Logger
}

func NewStatusHookUsecase(outbox repo.OutboxRepository, log *zap.Logger) *StatusHookUsecase {
	return &StatusHookUsecase{outbox: outbox, log: log}
}

type StatusHookRecord struct {
	ID            int64  `json:"id"`
	OrderNumber   string `json:"order_number"`
	UserID        int64  `json:"user_id"`
	CustomerEmail string `json:"customer_email"`
	Status        string `json:"status"`
}

type StatusHookInput struct {
	Record    StatusHookRecord `json:"record"`
	OldRecord StatusHookRecord `json:"old_record"`
}

func (u *StatusHookUsecase) Handle(ctx context.Context, in StatusHookInput) error {
	if in.Record.ID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid record")
	}

	//ステータス以外の更新でも発火するので、変化なしはここで落とす
	if in.Record.Status == in.OldRecord.Status {
		return nil
	}

	newStatus := model.OrderStatus(in.Record.Status)
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	err := u.outbox.Create(ctx, model.NotificationOutbox{
		OrderID:        in.Record.ID,
		OrderNumber:    in.Record.OrderNumber,
		UserID:         in.Record.UserID,
		RecipientEmail: in.Record.CustomerEmail,
		OldStatus:      model.OrderStatus(in.OldRecord.Status),
		NewStatus:      newStatus,
		Status:         model.OutboxStatusPending,
	})
	if err != nil {
		u.log.Error("failed to enqueue status notification",
			zap.Int64("order_id", in.Record.ID),
			zap.Error(err))
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
