package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/application/orders"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// OrderHandler maneja órdenes de cliente y su ciclo de vida.
type OrderHandler struct {
	uc *orders.UseCase
}

func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ItemCode:  l.ItemCode,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Extension: l.Quantity.Mul(l.UnitPrice),
		})
	}
	return dto.OrderResponse{
		Code:        o.Code,
		Customer:    o.Customer,
		Status:      o.Status,
		Deadline:    o.Deadline,
		TotalAmount: o.TotalAmount,
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// Create godoc
// @Summary      Crear orden de cliente
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "customer, deadline, lines"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.CreateOrder(c.Context(), GetUserID(c), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrUnknownItem):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: "artículo desconocido o inactivo"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Filtrar por estado"
// @Param        customer  query  string  false  "Filtrar por cliente (parcial)"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.uc.ListOrders(c.Context(), c.Query("status"), c.Query("customer"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de orden con historial de estados
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de orden (ORD-0001)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{code} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, history, err := h.uc.GetOrder(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	changes := make([]dto.OrderStatusChangeResponse, 0, len(history))
	for _, ch := range history {
		changes = append(changes, dto.OrderStatusChangeResponse{
			OldStatus: ch.OldStatus,
			NewStatus: ch.NewStatus,
			Comment:   ch.Comment,
			ChangedBy: ch.ChangedBy,
			ChangedAt: ch.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{
		"order":   toOrderResponse(order),
		"history": changes,
	})
}

// Transition godoc
// @Summary      Transicionar el estado de una orden
// @Description  Aplica la máquina de estados. El paso a ready exige stock
//
//	suficiente en todas las líneas; el paso a shipped consume el
//	stock de forma atómica (todas las líneas o ninguna).
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        code  path  string                      true  "Código de orden"
// @Param        body  body  dto.TransitionOrderRequest  true  "target_status, comment opcional"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{code}/transition [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.Transition(c.Context(), GetUserID(c), c.Params("code"), in.TargetStatus, in.Comment)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
		case errors.Is(err, domain.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
		case errors.Is(err, domain.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente para la orden"})
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toOrderResponse(order))
}
