package handler

import (
	"net/http"

	"geraiku/internal/gateway/payment"
	"geraiku/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済ゲートウェイからの通知を受ける。認証はヘッダーではなくsignature_keyで行う。
type PaymentWebhookHandler struct {
	uc *usecase.PaymentWebhookUsecase
}

func NewPaymentWebhookHandler(uc *usecase.PaymentWebhookUsecase) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{uc: uc}
}

func (h *PaymentWebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/payments/notification", h.notify)
}

func (h *PaymentWebhookHandler) notify(c echo.Context) error {
	var p payment.NotificationPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.HandleNotification(c.Request().Context(), p); err != nil {
		return writeError(c, err)
	}

	//ゲートウェイ側のリトライを止めるため、処理済みは常に200
	return c.JSON(http.StatusOK, SuccessResponse{Message: "OK"})
}
