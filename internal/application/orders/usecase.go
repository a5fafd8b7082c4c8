package orders

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

// UseCase motor de flujo de órdenes: máquina de estados con chequeo de
// disponibilidad contra el balance y consumo de stock al despachar.
type UseCase struct {
	txRunner TxRunner
	movement *inventory.RecordMovementUseCase
	orderRepo repository.OrderRepository
	itemRepo  repository.ItemRepository
}

// NewUseCase construye el motor de órdenes.
func NewUseCase(
	txRunner TxRunner,
	movement *inventory.RecordMovementUseCase,
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
) *UseCase {
	return &UseCase{txRunner: txRunner, movement: movement, orderRepo: orderRepo, itemRepo: itemRepo}
}

// CreateOrder da de alta una orden en pending. El total se calcula desde las
// líneas; nunca se acepta editado desde afuera.
func (uc *UseCase) CreateOrder(ctx context.Context, actor string, in dto.CreateOrderRequest) (*entity.Order, error) {
	if strings.TrimSpace(in.Customer) == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		Customer:  strings.TrimSpace(in.Customer),
		Status:    entity.OrderPending,
		Deadline:  in.Deadline,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, l := range in.Lines {
		if !l.Quantity.GreaterThan(decimal.Zero) || l.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidQuantity
		}
		item, err := uc.itemRepo.GetByCode(l.ItemCode)
		if err != nil {
			return nil, err
		}
		if item == nil || !item.Active {
			return nil, domain.ErrUnknownItem
		}
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ItemID:    item.ID,
			ItemCode:  item.Code,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	order.TotalAmount = order.ComputeTotal()

	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		code, err := orderRepo.NextCode()
		if err != nil {
			return err
		}
		order.Code = code
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{
			"code": order.Code, "customer": order.Customer,
			"status": order.Status, "total": order.TotalAmount,
		})
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityOrder,
			EntityID:   order.Code,
			Action:     "order_created",
			After:      after,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Transition aplica una transición de estado. Reglas:
//   - under_process -> ready exige balance suficiente por línea (chequeo
//     puntual, no reserva; se revalida al despachar).
//   - ready -> shipped consume stock de todas las líneas en la misma
//     transacción: cualquier falta aborta el grupo completo.
//   - cancelled solo antes del despacho; después del despacho la cancelación
//     simple devuelve ErrInvalidTransition.
//
// Toda transición aceptada escribe una entrada de auditoría con estado
// anterior y nuevo, más el registro en el historial de la orden.
func (uc *UseCase) Transition(ctx context.Context, actor, orderCode, target, comment string) (*entity.Order, error) {
	if !entity.ValidOrderStatus(target) {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Order
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		out = nil
		err = uc.txRunner.Run(ctx, func(
			orderRepo repository.OrderRepository,
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
			itemRepo repository.ItemRepository,
			logRepo repository.ActivityLogRepository,
		) error {
			order, txErr := uc.applyTransition(orderRepo, movRepo, stockRepo, itemRepo, logRepo, actor, orderCode, target, comment)
			if txErr != nil {
				return txErr
			}
			out = order
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

func (uc *UseCase) applyTransition(
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
	actor, orderCode, target, comment string,
) (*entity.Order, error) {
	order, err := orderRepo.GetByCodeForUpdate(orderCode)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransition(order.Status, target) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()

	switch target {
	case entity.OrderReady:
		// Chequeo de disponibilidad: puntual, sin reservar.
		for _, line := range order.Lines {
			balance, err := stockRepo.Get(line.ItemID)
			if err != nil {
				return nil, err
			}
			if balance.Quantity.LessThan(line.Quantity) {
				return nil, domain.ErrInsufficientStock
			}
		}
	case entity.OrderShipped:
		// Consumo por línea dentro de esta transacción. La fila de balance se
		// bloquea por línea; si alguna falla, el rollback descarta todas.
		for _, line := range order.Lines {
			item, err := itemRepo.GetByID(line.ItemID)
			if err != nil {
				return nil, err
			}
			if item == nil {
				return nil, domain.ErrUnknownItem
			}
			_, err = uc.movement.RecordInTx(movRepo, stockRepo, logRepo, item, inventory.MovementInput{
				ItemCode:  item.Code,
				Kind:      entity.MovementConsumption,
				Quantity:  line.Quantity,
				Reason:    fmt.Sprintf("order %s shipped", order.Code),
				Actor:     actor,
				CauseType: entity.CauseOrder,
				CauseRef:  order.Code,
			}, now)
			if err != nil {
				return nil, err
			}
		}
	}

	oldStatus := order.Status
	order.Status = target
	order.UpdatedAt = now
	if err := orderRepo.UpdateStatus(order.ID, target); err != nil {
		return nil, err
	}
	if err := orderRepo.AddStatusChange(&entity.OrderStatusChange{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		OldStatus: oldStatus,
		NewStatus: target,
		Comment:   comment,
		ChangedBy: actor,
		ChangedAt: now,
	}); err != nil {
		return nil, err
	}

	before, _ := json.Marshal(map[string]any{"status": oldStatus})
	after, _ := json.Marshal(map[string]any{"status": target})
	if err := logRepo.Append(&entity.ActivityLogEntry{
		Actor:      actor,
		EntityType: entity.EntityOrder,
		EntityID:   order.Code,
		Action:     "order_status_changed",
		Before:     before,
		After:      after,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder devuelve la orden con su historial de estados.
func (uc *UseCase) GetOrder(ctx context.Context, code string) (*entity.Order, []*entity.OrderStatusChange, error) {
	order, err := uc.orderRepo.GetByCode(code)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, domain.ErrNotFound
	}
	history, err := uc.orderRepo.ListStatusHistory(order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, history, nil
}

// ListOrders lista órdenes con filtros opcionales.
func (uc *UseCase) ListOrders(ctx context.Context, status, customer string, limit, offset int) ([]*entity.Order, error) {
	if status != "" && !entity.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	return uc.orderRepo.List(status, customer, limit, offset)
}
