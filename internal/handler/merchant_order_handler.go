package handler

import (
	"net/http"
	"strconv"
	"time"

	"geraiku/internal/config"
	"geraiku/internal/middleware"
	repo "geraiku/internal/repository"
	"geraiku/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 店舗側の注文管理API
type MerchantOrderHandler struct {
	orders *usecase.OrderUsecase
	status *usecase.OrderStatusUsecase
}

func NewMerchantOrderHandler(orders *usecase.OrderUsecase, status *usecase.OrderStatusUsecase) *MerchantOrderHandler {
	return &MerchantOrderHandler{orders: orders, status: status}
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	MerchantNotes  string `json:"merchant_notes"`
}

func (h *MerchantOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/merchant/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.MerchantRoleGuard())

	g.GET("", h.list)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *MerchantOrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l <= 0 || l > 100 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	f := repo.MerchantOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		f.To = &t
	}

	out, err := h.orders.ListMerchantOrders(c.Request().Context(), userID, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MerchantOrderHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.status.MerchantUpdateStatus(c.Request().Context(), userID, id, usecase.MerchantUpdateStatusInput{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		MerchantNotes:  req.MerchantNotes,
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}
