package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"

	"go.uber.org/zap"
)

// OrderStatusUsecase が状態機械の入口。呼び出し元は3つ：
// 店舗の手動更新・決済Webhook（payment_webhook_usecase経由）・顧客キャンセル。
type OrderStatusUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewOrderStatusUsecase(tx repo.TransactionManager, log *zap.Logger) *OrderStatusUsecase {
	return &OrderStatusUsecase{tx: tx, log: log}
}

type MerchantUpdateStatusInput struct {
	Status         string
	TrackingNumber string
	MerchantNotes  string
}

// MerchantUpdateStatus は店舗オーナーによる手動遷移。
func (u *OrderStatusUsecase) MerchantUpdateStatus(ctx context.Context, merchantUserID int64, orderID int64, in MerchantUpdateStatusInput) error {
	if merchantUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	to := model.OrderStatus(strings.TrimSpace(in.Status))
	if !to.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 注文の店舗のオーナーだけが手動遷移できる
		m, err := r.Merchants().FindByID(ctx, o.MerchantID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if m.UserID != merchantUserID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		return applyTransition(ctx, r, o, to, transitionOpts{
			trackingNumber: strings.TrimSpace(in.TrackingNumber),
			merchantNotes:  strings.TrimSpace(in.MerchantNotes),
			log:            u.log,
		})
	})
}

// CustomerCancel は顧客自身によるキャンセル。
// 出荷準備に入った後は店舗しかキャンセルできない。
func (u *OrderStatusUsecase) CustomerCancel(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		if !o.Status.Meta().CustomerCancellable {
			return NewHTTPError(http.StatusBadRequest, "order can no longer be cancelled")
		}

		return applyTransition(ctx, r, o, model.OrderStatusCancelled, transitionOpts{log: u.log})
	})
}

type transitionOpts struct {
	trackingNumber string
	merchantNotes  string
	// 入金確定（webhook）は在庫不足でも遷移を通してログに残す
	lenientStock bool
	log          *zap.Logger
}

// applyTransition は遷移表＋ガードを評価して、ステータス書き込み・在庫副作用・
// 通知outboxを同一Txで適用する。usecase内の全呼び出し元がここを通る。
func applyTransition(ctx context.Context, r repo.TxRepos, o model.Order, to model.OrderStatus, opts transitionOpts) error {
	if !model.CanTransition(o.Status, to) {
		return NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("invalid transition from %s to %s", o.Status, to))
	}

	// 配送注文はshippedを飛ばしてdeliveredにできない（直行はpickupだけ）
	if to == model.OrderStatusDelivered &&
		o.Status == model.OrderStatusReadyToShip &&
		o.DeliveryMethod == model.DeliveryMethodDelivery {
		return NewHTTPError(http.StatusBadRequest, "delivery orders must be shipped before delivered")
	}

	patch := repo.OrderStatusPatch{}
	if opts.merchantNotes != "" {
		patch.MerchantNotes = &opts.merchantNotes
	}

	switch to {
	case model.OrderStatusShipped:
		if o.DeliveryMethod == model.DeliveryMethodDelivery {
			tracking := opts.trackingNumber
			if tracking == "" {
				tracking = o.TrackingNumber
			}
			if tracking == "" {
				return NewHTTPError(http.StatusBadRequest, "tracking number is required")
			}
			patch.TrackingNumber = &tracking
		}

	case model.OrderStatusPaid:
		now := time.Now()
		patch.PaidAt = &now

	case model.OrderStatusCompleted:
		now := time.Now()
		patch.CompletedAt = &now
	}

	// 読んだ時点のstatusを条件にした書き込みを先に行う。別の書き込みが
	// 割り込んでいた場合はここで負けて、在庫には一切触らず抜ける。
	ok, err := r.Orders().UpdateStatus(ctx, o.ID, o.Status, to, patch)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return NewHTTPError(http.StatusConflict, "order was updated concurrently, please retry")
	}

	switch to {
	case model.OrderStatusPaid:
		// 入金確定のタイミングで在庫を引く（CODは受注時に引き済みでここを通らない）
		// 在庫不足のエラーはTxごと巻き戻るのでステータスも元に戻る
		if err := commitStock(ctx, r, o, opts); err != nil {
			return err
		}

	case model.OrderStatusCancelled:
		// pending_paymentはまだ在庫確保前なので戻さない
		if o.Status.Meta().RestockOnCancel {
			if err := restock(ctx, r, o.ID); err != nil {
				return err
			}
		}
	}

	// 通知はoutbox経由のbest-effort。ここでの失敗は遷移を巻き戻さない方針だが、
	// 同一Txなのでinsert自体の失敗はロールバックになる（それで良い）。
	if err := r.Outbox().Create(ctx, model.NotificationOutbox{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		RecipientEmail: o.CustomerEmail,
		OldStatus:      o.Status,
		NewStatus:      to,
		Status:         model.OutboxStatusPending,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func commitStock(ctx context.Context, r repo.TxRepos, o model.Order, opts transitionOpts) error {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	for _, it := range items {
		ok, err := r.Inventory().DecrementIfEnough(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			if !opts.lenientStock {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}
			// 入金は確定しているので遷移は通し、在庫の食い違いは運用側へ
			opts.log.Error("stock shortfall at settlement, manual reconciliation required",
				zap.Int64("order_id", o.ID),
				zap.String("order_number", o.OrderNumber),
				zap.Int64("product_id", it.ProductID),
				zap.Int64("quantity", it.Quantity))
		}
	}
	return nil
}

func restock(ctx context.Context, r repo.TxRepos, orderID int64) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, it := range items {
		if err := r.Inventory().Increment(ctx, it.ProductID, it.Quantity); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}
	return nil
}
