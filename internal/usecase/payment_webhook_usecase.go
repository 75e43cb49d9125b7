package usecase

import (
	"context"
	"errors"
	"net/http"

	"geraiku/internal/domain/model"
	"geraiku/internal/gateway/payment"
	repo "geraiku/internal/repository"

	"go.uber.org/zap"
)

type WebhookVerifier interface {
	VerifyWebhookSignature(externalID string, statusCode string, grossAmount string, signatureKey string) bool
}

// PaymentWebhookUsecase は決済ゲートウェイからの通知を処理する。
// 通知はat-least-onceで届くので、同じsettlementを二度適用しないことが要。
type PaymentWebhookUsecase struct {
	tx       repo.TransactionManager
	verifier WebhookVerifier
	log      *zap.Logger
}

func NewPaymentWebhookUsecase(tx repo.TransactionManager, verifier WebhookVerifier, log *zap.Logger) *PaymentWebhookUsecase {
	return &PaymentWebhookUsecase{tx: tx, verifier: verifier, log: log}
}

func (u *PaymentWebhookUsecase) HandleNotification(ctx context.Context, p payment.NotificationPayload) error {
	// 署名が合わない通知は状態を一切触らずに弾く
	if !u.verifier.VerifyWebhookSignature(p.OrderID, p.StatusCode, p.GrossAmount, p.SignatureKey) {
		u.log.Warn("webhook signature mismatch", zap.String("external_id", p.OrderID))
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	mapped, ok := payment.MapTransactionStatus(p.TransactionStatus, p.FraudStatus)
	if !ok {
		u.log.Warn("unknown gateway transaction status",
			zap.String("external_id", p.OrderID),
			zap.String("transaction_status", p.TransactionStatus))
		return NewHTTPError(http.StatusBadRequest, "unknown transaction status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Transactions().FindByExternalID(ctx, p.OrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "transaction not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// pendingから動くのは一度だけ。再配送や決着後の通知はno-op（200を返す）
		if t.Status != model.TransactionStatusPending || mapped == model.TransactionStatusPending {
			if t.Status != mapped && mapped != model.TransactionStatusPending {
				u.log.Warn("webhook for already settled transaction ignored",
					zap.String("external_id", p.OrderID),
					zap.String("current", string(t.Status)),
					zap.String("incoming", string(mapped)))
			}
			return nil
		}

		// pendingのままの行だけを動かす条件付き書き込み。同じ通知が並行して
		// 届いても、在庫を引けるのはこのUPDATEを勝ち取った一件だけになる
		ok, err := r.Transactions().UpdateStatus(ctx, t.ID, model.TransactionStatusPending, mapped, p.PaymentType)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			u.log.Warn("concurrent webhook delivery won the transaction update, skipping",
				zap.String("external_id", p.OrderID))
			return nil
		}

		o, err := r.Orders().FindByTransactionID(ctx, t.ID)
		if errors.Is(err, repo.ErrNotFound) {
			// Transactionだけ残っている＝作成途中の片割れ。運用で突き合わせる
			u.log.Error("transaction without order, manual reconciliation required",
				zap.String("external_id", p.OrderID), zap.Int64("transaction_id", t.ID))
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		var target model.OrderStatus
		switch mapped {
		case model.TransactionStatusSettlement:
			target = model.OrderStatusPaid
		case model.TransactionStatusExpire, model.TransactionStatusDeny:
			target = model.OrderStatusFailed
		case model.TransactionStatusCancel:
			target = model.OrderStatusCancelled
		default:
			return nil
		}

		if !model.CanTransition(o.Status, target) {
			// 店舗やwebhookと競合して先に動いていた場合。遷移表が後着を弾く
			u.log.Warn("order already moved, webhook transition skipped",
				zap.Int64("order_id", o.ID),
				zap.String("current", string(o.Status)),
				zap.String("target", string(target)))
			return nil
		}

		return applyTransition(ctx, r, o, target, transitionOpts{
			lenientStock: true,
			log:          u.log,
		})
	})
}
