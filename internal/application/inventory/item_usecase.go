package inventory

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// ItemUseCase catálogo de artículos: alta con código secuencial por prefijo de
// categoría, actualización de atributos y desactivación (nunca borrado mientras
// existan movimientos que lo referencien).
type ItemUseCase struct {
	txRunner TxRunner
	movement *RecordMovementUseCase
	itemRepo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso de catálogo.
func NewItemUseCase(txRunner TxRunner, movement *RecordMovementUseCase, itemRepo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{txRunner: txRunner, movement: movement, itemRepo: itemRepo}
}

// CreateItem da de alta un artículo. El código se reserva dentro de la misma
// transacción (secuencia por prefijo, nunca reutilizada). Si viene stock
// inicial, se registra como movimiento receipt en esa transacción.
func (uc *ItemUseCase) CreateItem(ctx context.Context, actor string, in dto.CreateItemRequest) (*entity.InventoryItem, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Unit) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinLevel.IsNegative() || in.MaxLevel.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock != nil && in.InitialStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	item := &entity.InventoryItem{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Unit:      strings.TrimSpace(in.Unit),
		MinLevel:  in.MinLevel,
		MaxLevel:  in.MaxLevel,
		UnitCost:  in.UnitCost,
		Supplier:  in.Supplier,
		Location:  in.Location,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !item.ValidLevels() {
		return nil, domain.ErrInvalidInput
	}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		itemRepo repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		code, err := itemRepo.NextCode(entity.CodePrefix(item.Category))
		if err != nil {
			return err
		}
		item.Code = code
		if err := itemRepo.Create(item); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{
			"code": item.Code, "name": item.Name, "category": item.Category,
			"min_level": item.MinLevel, "max_level": item.MaxLevel,
		})
		if err := logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityItem,
			EntityID:   item.Code,
			Action:     "item_created",
			After:      after,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		if in.InitialStock != nil && in.InitialStock.GreaterThan(decimal.Zero) {
			_, err := uc.movement.RecordInTx(movRepo, stockRepo, logRepo, item, MovementInput{
				ItemCode: item.Code,
				Kind:     entity.MovementReceipt,
				Quantity: *in.InitialStock,
				Reason:   "stock inicial de alta",
				Actor:    actor,
			}, now)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem actualiza atributos editables. El código es inmutable y el balance
// no se toca por esta vía (solo movimientos lo cambian).
func (uc *ItemUseCase) UpdateItem(ctx context.Context, actor, code string, in dto.UpdateItemRequest) (*entity.InventoryItem, error) {
	item, err := uc.itemRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrUnknownItem
	}
	before, _ := json.Marshal(map[string]any{
		"name": item.Name, "category": item.Category,
		"min_level": item.MinLevel, "max_level": item.MaxLevel,
	})

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.MinLevel != nil {
		item.MinLevel = *in.MinLevel
	}
	if in.MaxLevel != nil {
		item.MaxLevel = *in.MaxLevel
	}
	if in.UnitCost != nil {
		item.UnitCost = in.UnitCost
	}
	if in.Supplier != nil {
		item.Supplier = *in.Supplier
	}
	if in.Location != nil {
		item.Location = *in.Location
	}
	if !item.ValidLevels() {
		return nil, domain.ErrInvalidInput
	}
	item.UpdatedAt = time.Now()

	err = uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		itemRepo repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		if err := itemRepo.Update(item); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{
			"name": item.Name, "category": item.Category,
			"min_level": item.MinLevel, "max_level": item.MaxLevel,
		})
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityItem,
			EntityID:   item.Code,
			Action:     "item_updated",
			Before:     before,
			After:      after,
			CreatedAt:  item.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeactivateItem desactiva el artículo: deja de aceptar movimientos pero
// conserva su historia (los movimientos nunca se borran en cascada).
func (uc *ItemUseCase) DeactivateItem(ctx context.Context, actor, code string) error {
	item, err := uc.itemRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrUnknownItem
	}
	if !item.Active {
		return nil // idempotente
	}
	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		itemRepo repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		if err := itemRepo.Deactivate(item.ID); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{"active": false})
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityItem,
			EntityID:   item.Code,
			Action:     "item_deactivated",
			After:      after,
			CreatedAt:  now,
		})
	})
}

// GetItem devuelve un artículo por código.
func (uc *ItemUseCase) GetItem(ctx context.Context, code string) (*entity.InventoryItem, error) {
	item, err := uc.itemRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrUnknownItem
	}
	return item, nil
}

// ListItems lista artículos con filtro opcional por categoría.
func (uc *ItemUseCase) ListItems(ctx context.Context, category string, activeOnly bool, limit, offset int) ([]*entity.InventoryItem, error) {
	return uc.itemRepo.List(category, activeOnly, limit, offset)
}
