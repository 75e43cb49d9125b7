package handler

import (
	"net/http"

	"geraiku/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// フロントがバッジ表示や操作可否の判定に使うステータスのメタ情報。
type OrderStatusHandler struct{}

func NewOrderStatusHandler() *OrderStatusHandler {
	return &OrderStatusHandler{}
}

type OrderStatusEntry struct {
	Status              string   `json:"status"`
	Label               string   `json:"label"`
	Next                []string `json:"next"`
	CustomerCancellable bool     `json:"customer_cancellable"`
	Terminal            bool     `json:"terminal"`
}

func (h *OrderStatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/order-statuses", h.list)
}

func (h *OrderStatusHandler) list(c echo.Context) error {
	table := model.OrderStatuses()

	out := make([]OrderStatusEntry, 0, len(table))
	for status, meta := range table {
		next := make([]string, 0, len(meta.Next))
		for _, n := range meta.Next {
			next = append(next, string(n))
		}
		out = append(out, OrderStatusEntry{
			Status:              string(status),
			Label:               meta.Label,
			Next:                next,
			CustomerCancellable: meta.CustomerCancellable,
			Terminal:            status.Terminal(),
		})
	}

	return c.JSON(http.StatusOK, out)
}
