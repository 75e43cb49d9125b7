package handler

import (
	"net/http"
	"strconv"

	"geraiku/internal/config"
	"geraiku/internal/middleware"
	"geraiku/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 行政区分ルックアップと配送料見積もり
type ShippingHandler struct {
	uc *usecase.ShippingUsecase
}

func NewShippingHandler(uc *usecase.ShippingUsecase) *ShippingHandler {
	return &ShippingHandler{uc: uc}
}

type QuoteItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type QuoteRequest struct {
	DestinationDistrictID int64              `json:"destination_district_id"`
	Items                 []QuoteItemRequest `json:"items"`
	Couriers              []string           `json:"couriers"`
}

func (h *ShippingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//地域参照はログイン前のチェックアウト画面でも使うので公開
	e.GET("/shipping/provinces", h.provinces)
	e.GET("/shipping/provinces/:id/cities", h.cities)
	e.GET("/shipping/cities/:id/districts", h.districts)
	e.GET("/shipping/districts/:id/villages", h.villages)

	g := e.Group("/shipping")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("/cost", h.quote)
}

func (h *ShippingHandler) provinces(c echo.Context) error {
	out, err := h.uc.Provinces(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShippingHandler) cities(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Cities(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShippingHandler) districts(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Districts(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShippingHandler) villages(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Villages(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShippingHandler) quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.QuoteItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.QuoteItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.uc.Quote(c.Request().Context(), usecase.QuoteInput{
		DestinationDistrictID: req.DestinationDistrictID,
		Items:                 items,
		Couriers:              req.Couriers,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
