package server

import (
	"geraiku/internal/config"
	"geraiku/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlers は起動時に組み立てた全ハンドラ。
type Handlers struct {
	Checkout       *handler.CheckoutHandler
	Order          *handler.OrderHandler
	MerchantOrder  *handler.MerchantOrderHandler
	PaymentWebhook *handler.PaymentWebhookHandler
	Shipping       *handler.ShippingHandler
	Cart           *handler.CartHandler
	Address        *handler.AddressHandler
	OrderStatus    *handler.OrderStatusHandler
	StatusHook     *handler.StatusHookHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Checkout.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.MerchantOrder.RegisterRoutes(e, cfg)
	h.PaymentWebhook.RegisterRoutes(e)
	h.Shipping.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Address.RegisterRoutes(e, cfg)
	h.OrderStatus.RegisterRoutes(e)
	h.StatusHook.RegisterRoutes(e, cfg)
}
