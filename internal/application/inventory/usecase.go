package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// maxTxAttempts reintentos ante ErrConcurrencyConflict: la transacción completa
// se reejecuta con lecturas frescas antes de devolver el error al caller.
const maxTxAttempts = 3

// RecordMovementUseCase registra movimientos del libro de stock de forma
// transaccional, con bloqueo de fila (SELECT FOR UPDATE) sobre el balance del
// artículo y escritura de auditoría en la misma transacción.
type RecordMovementUseCase struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
}

// NewRecordMovementUseCase construye el caso de uso.
func NewRecordMovementUseCase(txRunner TxRunner, itemRepo repository.ItemRepository) *RecordMovementUseCase {
	return &RecordMovementUseCase{txRunner: txRunner, itemRepo: itemRepo}
}

// MovementInput entrada para registrar un movimiento.
// Quantity es estrictamente positiva; el delta firmado se deriva de Kind.
// Para correction la cantidad lleva signo explícito (override administrativo
// que exige justificación no vacía y rol admin).
type MovementInput struct {
	ItemCode  string
	Kind      string
	Quantity  decimal.Decimal
	Reason    string
	Actor     string
	ActorRole string
	CauseType string
	CauseRef  string
}

// RecordMovement valida la entrada, resuelve el artículo y aplica el movimiento
// dentro de una transacción. Reintenta hasta maxTxAttempts si la transacción
// pierde por conflicto de concurrencia.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if !entity.ValidKind(in.Kind) {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Kind == entity.MovementCorrection {
		if in.Quantity.IsZero() {
			return nil, domain.ErrInvalidQuantity
		}
	} else if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	// Ajustes crudos y correcciones son solo para admin; los flujos normales
	// de recepción/consumo admiten también manager.
	switch in.Kind {
	case entity.MovementAdjustIncrease, entity.MovementAdjustDecrease, entity.MovementCorrection:
		if in.ActorRole != entity.RoleAdmin {
			return nil, domain.ErrUnauthorized
		}
	}

	item, err := uc.itemRepo.GetByCode(in.ItemCode)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.Active {
		return nil, domain.ErrUnknownItem
	}

	var out *entity.StockMovement
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		out = nil
		err = uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
			_ repository.ItemRepository,
			logRepo repository.ActivityLogRepository,
		) error {
			mov, applyErr := uc.RecordInTx(movRepo, stockRepo, logRepo, item, in, time.Now())
			if applyErr != nil {
				return applyErr
			}
			out = mov
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

// RecordInTx aplica un movimiento usando los repositorios proporcionados
// (misma transacción del caller). Lo usan el despacho de órdenes y la recepción
// de OCs para que sus movimientos participen de su propia unidad atómica.
//
// Bloquea la fila de balance, verifica no-negatividad, inserta el movimiento
// con su secuencia por artículo, actualiza la caché de balance y escribe la
// entrada de auditoría. Cualquier error revierte todo.
func (uc *RecordMovementUseCase) RecordInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	logRepo repository.ActivityLogRepository,
	item *entity.InventoryItem,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	delta := entity.SignedDelta(in.Kind, in.Quantity)

	balance, err := stockRepo.GetForUpdate(item.ID)
	if err != nil {
		return nil, err
	}
	newQty := balance.Quantity.Add(delta)
	// El balance nunca puede quedar negativo, ni siquiera con correction:
	// el override administrativo permite achicar un sobreconteo, no inventar deuda.
	if newQty.IsNegative() {
		return nil, domain.ErrInsufficientStock
	}

	seq, err := movRepo.NextSeq(item.ID)
	if err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ItemID:          item.ID,
		Seq:             seq,
		Kind:            in.Kind,
		Quantity:        delta,
		PreviousBalance: balance.Quantity,
		NewBalance:      newQty,
		Reason:          in.Reason,
		Actor:           in.Actor,
		CauseType:       in.CauseType,
		CauseRef:        in.CauseRef,
		CreatedAt:       now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}

	balance.Quantity = newQty
	balance.UpdatedAt = now
	if err := stockRepo.Upsert(balance); err != nil {
		return nil, err
	}

	before, _ := json.Marshal(map[string]any{"balance": mov.PreviousBalance})
	after, _ := json.Marshal(map[string]any{
		"balance": mov.NewBalance,
		"seq":     mov.Seq,
		"kind":    mov.Kind,
		"delta":   mov.Quantity,
	})
	entry := &entity.ActivityLogEntry{
		Actor:      in.Actor,
		EntityType: entity.EntityItem,
		EntityID:   item.Code,
		Action:     "stock_movement",
		Before:     before,
		After:      after,
		CreatedAt:  now,
	}
	if err := logRepo.Append(entry); err != nil {
		return nil, err
	}
	return mov, nil
}
