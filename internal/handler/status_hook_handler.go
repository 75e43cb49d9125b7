package handler

import (
	"net/http"

	"geraiku/internal/config"
	"geraiku/internal/middleware"
	"geraiku/internal/usecase"

	"github.com/labstack/echo/v4"
)

// DBトリガからの内部フック。公開APIではない。
type StatusHookHandler struct {
	uc *usecase.StatusHookUsecase
}

func NewStatusHookHandler(uc *usecase.StatusHookUsecase) *StatusHookHandler {
	return &StatusHookHandler{uc: uc}
}

func (h *StatusHookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/internal")
	g.Use(middleware.WebhookSecretGuard(cfg.WebhookSharedSecret))

	g.POST("/order-status-hook", h.hook)
}

func (h *StatusHookHandler) hook(c echo.Context) error {
	var in usecase.StatusHookInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.Handle(c.Request().Context(), in); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "OK"})
}
