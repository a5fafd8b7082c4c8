package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// ItemHandler maneja el catálogo de artículos (protegido).
type ItemHandler struct {
	items   *inventory.ItemUseCase
	queries *inventory.QueryUseCase
}

func NewItemHandler(items *inventory.ItemUseCase, queries *inventory.QueryUseCase) *ItemHandler {
	return &ItemHandler{items: items, queries: queries}
}

func (h *ItemHandler) toResponse(c *fiber.Ctx, it *entity.InventoryItem) dto.ItemResponse {
	balance := decimal.Zero
	status := entity.StockStatusOut
	if b, s, err := h.queries.Status(c.Context(), it.Code); err == nil {
		balance, status = b, s
	}
	return dto.ItemResponse{
		Code:      it.Code,
		Name:      it.Name,
		Category:  it.Category,
		Unit:      it.Unit,
		MinLevel:  it.MinLevel,
		MaxLevel:  it.MaxLevel,
		UnitCost:  it.UnitCost,
		Supplier:  it.Supplier,
		Location:  it.Location,
		Active:    it.Active,
		Balance:   balance,
		Status:    status,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

// Create godoc
// @Summary      Crear artículo de inventario
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "name, category, unit, min_level, max_level; initial_stock opcional"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.items.CreateItem(c.Context(), GetUserID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(h.toResponse(c, item))
}

// List godoc
// @Summary      Listar artículos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Filtrar por categoría"
// @Param        active    query  bool    false  "Solo activos"
// @Success      200  {array}  dto.ItemResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	items, err := h.items.ListItems(c.Context(), c.Query("category"), c.QueryBool("active"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, h.toResponse(c, it))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de artículo por código
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de negocio (p.ej. MAT-0001)"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{code} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	item, err := h.items.GetItem(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, domain.ErrUnknownItem) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.toResponse(c, item))
}

// Update godoc
// @Summary      Actualizar atributos de un artículo
// @Description  El código y el balance no se editan por esta vía.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        code  path  string                 true  "Código de negocio"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{code} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.items.UpdateItem(c.Context(), GetUserID(c), c.Params("code"), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownItem):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.toResponse(c, item))
}

// Deactivate godoc
// @Summary      Desactivar artículo
// @Description  Los artículos nunca se borran: quedan inactivos y conservan su historial.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de negocio"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{code} [delete]
func (h *ItemHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.items.DeactivateItem(c.Context(), GetUserID(c), c.Params("code")); err != nil {
		if errors.Is(err, domain.ErrUnknownItem) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "artículo desactivado"})
}
