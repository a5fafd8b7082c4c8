package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fabrica-api/internal/application/audit"
	"github.com/jhoicas/Fabrica-api/internal/application/dto"
)

// ActivityHandler expone la bitácora de auditoría (solo lectura).
type ActivityHandler struct {
	uc *audit.UseCase
}

func NewActivityHandler(uc *audit.UseCase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

// List godoc
// @Summary      Consultar la bitácora de auditoría
// @Description  Entradas en orden de secuencia ascendente, filtrables por tipo
//
//	de entidad, entidad y rango de fechas.
//
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "inventory_item | order | purchase_order | user"
// @Param        entity_id    query  string  false  "Código de negocio (ITM-0001, ORD-0001, ...)"
// @Param        from         query  string  false  "Fecha inicial (RFC3339)"
// @Param        to           query  string  false  "Fecha final (RFC3339)"
// @Success      200  {object}  dto.ActivityLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	var q dto.ActivityLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.DefaultPage()
	out, err := h.uc.List(c.Context(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
