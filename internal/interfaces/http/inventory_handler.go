package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// InventoryHandler maneja movimientos de stock, balances y verificación del libro mayor.
type InventoryHandler struct {
	movements *inventory.RecordMovementUseCase
	queries   *inventory.QueryUseCase
}

func NewInventoryHandler(movements *inventory.RecordMovementUseCase, queries *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, queries: queries}
}

func toMovementResponse(itemCode string, m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		ItemCode:        itemCode,
		Seq:             m.Seq,
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		PreviousBalance: m.PreviousBalance,
		NewBalance:      m.NewBalance,
		Reason:          m.Reason,
		Actor:           m.Actor,
		CauseType:       m.CauseType,
		CauseRef:        m.CauseRef,
		CreatedAt:       m.CreatedAt,
	}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  receipt y consumption para admin y manager; adjustment-increase,
//
//	adjustment-decrease y correction solo admin y con justificación.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordMovementRequest  true  "item_code, kind, quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.movements.RecordMovement(c.Context(), inventory.MovementInput{
		ItemCode:  in.ItemCode,
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Actor:     GetUserID(c),
		ActorRole: GetRole(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrUnauthorized):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "movimiento reservado para administradores"})
		case errors.Is(err, domain.ErrUnknownItem):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: "artículo desconocido o inactivo"})
		case errors.Is(err, domain.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(in.ItemCode, m))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un artículo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code  path   string  true   "Código de artículo"
// @Param        from  query  string  false  "Fecha inicial (RFC3339)"
// @Param        to    query  string  false  "Fecha final (RFC3339)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{code}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from: fecha inválida"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to: fecha inválida"})
	}
	code := c.Params("code")
	list, err := h.queries.ListMovements(c.Context(), code, from, to, page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownItem) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: "artículo desconocido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(code, m))
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Balance y estado de stock de un artículo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de artículo"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{code}/balance [get]
func (h *InventoryHandler) Balance(c *fiber.Ctx) error {
	code := c.Params("code")
	balance, status, err := h.queries.Status(c.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownItem) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: "artículo desconocido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.BalanceResponse{ItemCode: code, Balance: balance, Status: status})
}

// VerifyLedger godoc
// @Summary      Verificar el libro mayor contra el balance cacheado
// @Description  Suma los deltas de todos los movimientos del artículo y los
//
//	compara con el balance materializado.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de artículo"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{code}/verify [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	code := c.Params("code")
	ledgerSum, cached, err := h.queries.VerifyLedger(c.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownItem) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: "artículo desconocido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"item_code":  code,
		"ledger_sum": ledgerSum,
		"cached":     cached,
		"consistent": ledgerSum.Equal(cached),
	})
}

func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
