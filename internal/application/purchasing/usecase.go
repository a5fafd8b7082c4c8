package purchasing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

const maxTxAttempts = 3

// UseCase motor de órdenes de compra: alta, recepción por línea con movimiento
// receipt atómico y derivación del estado de la OC desde sus líneas.
type UseCase struct {
	txRunner TxRunner
	movement *inventory.RecordMovementUseCase
	poRepo   repository.PurchaseOrderRepository
	itemRepo repository.ItemRepository
}

// NewUseCase construye el motor de compras.
func NewUseCase(
	txRunner TxRunner,
	movement *inventory.RecordMovementUseCase,
	poRepo repository.PurchaseOrderRepository,
	itemRepo repository.ItemRepository,
) *UseCase {
	return &UseCase{txRunner: txRunner, movement: movement, poRepo: poRepo, itemRepo: itemRepo}
}

// CreatePO da de alta una orden de compra en open. ReceivedQty arranca en cero
// en todas las líneas.
func (uc *UseCase) CreatePO(ctx context.Context, actor string, in dto.CreatePORequest) (*entity.PurchaseOrder, error) {
	if strings.TrimSpace(in.Supplier) == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		Supplier:     strings.TrimSpace(in.Supplier),
		Status:       entity.POOpen,
		ExpectedDate: in.ExpectedDate,
		Notes:        in.Notes,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, l := range in.Lines {
		if !l.OrderedQty.GreaterThan(decimal.Zero) || l.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidQuantity
		}
		item, err := uc.itemRepo.GetByCode(l.ItemCode)
		if err != nil {
			return nil, err
		}
		if item == nil || !item.Active {
			return nil, domain.ErrUnknownItem
		}
		po.Lines = append(po.Lines, entity.PurchaseOrderLine{
			ID:          uuid.New().String(),
			POID:        po.ID,
			ItemID:      item.ID,
			ItemCode:    item.Code,
			OrderedQty:  l.OrderedQty,
			ReceivedQty: decimal.Zero,
			UnitCost:    l.UnitCost,
		})
	}

	err := uc.txRunner.Run(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		code, err := poRepo.NextCode()
		if err != nil {
			return err
		}
		po.Code = code
		if err := poRepo.Create(po); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{
			"code": po.Code, "supplier": po.Supplier, "status": po.Status,
		})
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityPurchaseOrder,
			EntityID:   po.Code,
			Action:     "po_created",
			After:      after,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// ReceiveLine registra una recepción contra una línea: valida cantidad y tope
// ordenado, registra el movimiento receipt y actualiza la línea en la misma
// transacción, y recalcula el estado de la OC desde sus líneas.
func (uc *UseCase) ReceiveLine(ctx context.Context, actor, poCode, lineID string, qty decimal.Decimal) (*entity.PurchaseOrder, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	var out *entity.PurchaseOrder
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		out = nil
		err = uc.txRunner.Run(ctx, func(
			poRepo repository.PurchaseOrderRepository,
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
			itemRepo repository.ItemRepository,
			logRepo repository.ActivityLogRepository,
		) error {
			po, txErr := uc.applyReceipt(poRepo, movRepo, stockRepo, itemRepo, logRepo, actor, poCode, lineID, qty)
			if txErr != nil {
				return txErr
			}
			out = po
			return nil
		})
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UseCase) applyReceipt(
	poRepo repository.PurchaseOrderRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
	actor, poCode, lineID string,
	qty decimal.Decimal,
) (*entity.PurchaseOrder, error) {
	po, err := poRepo.GetByCodeForUpdate(poCode)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	if entity.POClosedStatus(po.Status) {
		return nil, domain.ErrPOClosed
	}

	var line *entity.PurchaseOrderLine
	for i := range po.Lines {
		if po.Lines[i].ID == lineID {
			line = &po.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}
	if line.ReceivedQty.Add(qty).GreaterThan(line.OrderedQty) {
		return nil, domain.ErrOverReceipt
	}

	item, err := itemRepo.GetByID(line.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrUnknownItem
	}

	now := time.Now()
	_, err = uc.movement.RecordInTx(movRepo, stockRepo, logRepo, item, inventory.MovementInput{
		ItemCode:  item.Code,
		Kind:      entity.MovementReceipt,
		Quantity:  qty,
		Reason:    fmt.Sprintf("PO %s receipt", po.Code),
		Actor:     actor,
		CauseType: entity.CausePurchaseOrder,
		CauseRef:  po.Code,
	}, now)
	if err != nil {
		return nil, err
	}

	prevReceived := line.ReceivedQty
	line.ReceivedQty = line.ReceivedQty.Add(qty)
	if err := poRepo.UpdateLineReceived(line.ID, line.ReceivedQty); err != nil {
		return nil, err
	}

	// El estado siempre se deriva de las líneas; ningún caller lo fija en completed.
	oldStatus := po.Status
	po.Status = entity.DerivePOStatus(po.Lines)
	po.UpdatedAt = now
	if po.Status != oldStatus {
		if err := poRepo.UpdateStatus(po.ID, po.Status); err != nil {
			return nil, err
		}
	}

	before, _ := json.Marshal(map[string]any{
		"status": oldStatus, "line_id": line.ID, "received": prevReceived,
	})
	after, _ := json.Marshal(map[string]any{
		"status": po.Status, "line_id": line.ID, "received": line.ReceivedQty,
	})
	if err := logRepo.Append(&entity.ActivityLogEntry{
		Actor:      actor,
		EntityType: entity.EntityPurchaseOrder,
		EntityID:   po.Code,
		Action:     "po_line_received",
		Before:     before,
		After:      after,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	return po, nil
}

// CancelPO cancela una OC en open o partially_received. Congela lo pendiente:
// no acepta más recepciones y no revierte movimientos ya registrados.
func (uc *UseCase) CancelPO(ctx context.Context, actor, poCode string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		po, err := poRepo.GetByCodeForUpdate(poCode)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if entity.POClosedStatus(po.Status) {
			return domain.ErrPOClosed
		}
		oldStatus := po.Status
		po.Status = entity.POCancelled
		po.UpdatedAt = time.Now()
		if err := poRepo.UpdateStatus(po.ID, po.Status); err != nil {
			return err
		}
		before, _ := json.Marshal(map[string]any{"status": oldStatus})
		after, _ := json.Marshal(map[string]any{"status": po.Status})
		if err := logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityPurchaseOrder,
			EntityID:   po.Code,
			Action:     "po_cancelled",
			Before:     before,
			After:      after,
			CreatedAt:  po.UpdatedAt,
		}); err != nil {
			return err
		}
		out = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetPO devuelve una OC por código.
func (uc *UseCase) GetPO(ctx context.Context, code string) (*entity.PurchaseOrder, error) {
	po, err := uc.poRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

// ListPOs lista órdenes de compra con filtros opcionales.
func (uc *UseCase) ListPOs(ctx context.Context, status, supplier string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.poRepo.List(status, supplier, limit, offset)
}
