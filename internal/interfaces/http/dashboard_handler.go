package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fabrica-api/internal/application/analytics"
	"github.com/jhoicas/Fabrica-api/internal/application/dto"
)

// DashboardHandler expone agregados de solo lectura para el tablero.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats godoc
// @Summary      Contadores por estado de órdenes, OCs y stock
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  analytics.DashboardStats
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Artículos bajo mínimo
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de filas (default 20)"
// @Success      200  {array}  repository.LowStockRow
// @Router       /api/dashboard/low-stock [get]
func (h *DashboardHandler) LowStock(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out, err := h.uc.LowStock(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
