package handler

import (
	"net/http"

	"geraiku/internal/config"
	"geraiku/internal/middleware"
	"geraiku/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkout のHTTP
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items"`
	PaymentMethod   string                `json:"payment_method"`
	DeliveryMethod  string                `json:"delivery_method"`
	AddressID       int64                 `json:"address_id"`
	ShippingCourier string                `json:"shipping_courier"`
	ShippingService string                `json:"shipping_service"`
	ShippingCost    int64                 `json:"shipping_cost"`
	ShippingETD     string                `json:"shipping_etd"`
	CustomerNotes   string                `json:"customer_notes"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.checkout)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	items := make([]usecase.CheckoutItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CheckoutItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		Items:           items,
		PaymentMethod:   req.PaymentMethod,
		DeliveryMethod:  req.DeliveryMethod,
		AddressID:       req.AddressID,
		ShippingCourier: req.ShippingCourier,
		ShippingService: req.ShippingService,
		ShippingCost:    req.ShippingCost,
		ShippingETD:     req.ShippingETD,
		CustomerNotes:   req.CustomerNotes,
		IdempotencyKey:  idemKey,
		CustomerName:    getStringFromContext(c, middleware.CtxUserNameKey),
		CustomerEmail:   getStringFromContext(c, middleware.CtxUserEmailKey),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
