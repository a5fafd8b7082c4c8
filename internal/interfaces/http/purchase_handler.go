package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/application/purchasing"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// PurchaseHandler maneja órdenes de compra y recepciones.
type PurchaseHandler struct {
	uc *purchasing.UseCase
}

func NewPurchaseHandler(uc *purchasing.UseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

func toPOResponse(po *entity.PurchaseOrder) dto.POResponse {
	lines := make([]dto.POLineResponse, 0, len(po.Lines))
	for _, l := range po.Lines {
		lines = append(lines, dto.POLineResponse{
			LineID:      l.ID,
			ItemCode:    l.ItemCode,
			OrderedQty:  l.OrderedQty,
			ReceivedQty: l.ReceivedQty,
			UnitCost:    l.UnitCost,
		})
	}
	return dto.POResponse{
		Code:         po.Code,
		Supplier:     po.Supplier,
		Status:       po.Status,
		ExpectedDate: po.ExpectedDate,
		Notes:        po.Notes,
		Lines:        lines,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreatePORequest  true  "supplier, expected_date, lines"
// @Success      201   {object}  dto.POResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePORequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	po, err := h.uc.CreatePO(c.Context(), GetUserID(c), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrUnknownItem):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: "artículo desconocido o inactivo"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toPOResponse(po))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Filtrar por estado"
// @Param        supplier  query  string  false  "Filtrar por proveedor (parcial)"
// @Success      200  {array}  dto.POResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.uc.ListPOs(c.Context(), c.Query("status"), c.Query("supplier"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.POResponse, 0, len(list))
	for _, po := range list {
		out = append(out, toPOResponse(po))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de OC (PO-0001)"
// @Success      200  {object}  dto.POResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{code} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	po, err := h.uc.GetPO(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden de compra no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toPOResponse(po))
}

// ReceiveLine godoc
// @Summary      Recibir mercadería contra una línea de OC
// @Description  Registra un receipt en el libro mayor y avanza la recepción de
//
//	la línea en la misma transacción. El estado de la OC se deriva
//	del conjunto de líneas.
//
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        code  path  string                  true  "Código de OC"
// @Param        body  body  dto.ReceiveLineRequest  true  "line_id, quantity"
// @Success      200  {object}  dto.POResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{code}/receive [post]
func (h *PurchaseHandler) ReceiveLine(c *fiber.Ctx) error {
	var in dto.ReceiveLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	po, err := h.uc.ReceiveLine(c.Context(), GetUserID(c), c.Params("code"), in.LineID, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cantidad inválida"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden de compra o línea no encontrada"})
		case errors.Is(err, domain.ErrOverReceipt):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_RECEIPT", Message: "la recepción excede lo ordenado"})
		case errors.Is(err, domain.ErrPOClosed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PO_CLOSED", Message: "la orden de compra ya no acepta recepciones"})
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toPOResponse(po))
}

// Cancel godoc
// @Summary      Cancelar orden de compra
// @Description  Congela el remanente: lo ya recibido permanece en stock.
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de OC"
// @Success      200  {object}  dto.POResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{code}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	po, err := h.uc.CancelPO(c.Context(), GetUserID(c), c.Params("code"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden de compra no encontrada"})
		case errors.Is(err, domain.ErrPOClosed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PO_CLOSED", Message: "la orden de compra ya está cerrada"})
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toPOResponse(po))
}
