package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// QueryUseCase lecturas de inventario: balance, estado derivado y movimientos.
// No abre transacciones; lee la caché de balance (siempre igual a la suma del
// libro porque solo se actualiza junto con cada movimiento).
type QueryUseCase struct {
	itemRepo  repository.ItemRepository
	stockRepo repository.StockRepository
	movRepo   repository.StockMovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	itemRepo repository.ItemRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) *QueryUseCase {
	return &QueryUseCase{itemRepo: itemRepo, stockRepo: stockRepo, movRepo: movRepo}
}

// CurrentBalance devuelve el balance actual del artículo.
func (uc *QueryUseCase) CurrentBalance(ctx context.Context, itemCode string) (decimal.Decimal, error) {
	item, err := uc.itemRepo.GetByCode(itemCode)
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil || !item.Active {
		return decimal.Zero, domain.ErrUnknownItem
	}
	balance, err := uc.stockRepo.Get(item.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Quantity, nil
}

// Status devuelve balance y estado derivado (recalculado en cada lectura,
// nunca persistido).
func (uc *QueryUseCase) Status(ctx context.Context, itemCode string) (decimal.Decimal, string, error) {
	item, err := uc.itemRepo.GetByCode(itemCode)
	if err != nil {
		return decimal.Zero, "", err
	}
	if item == nil || !item.Active {
		return decimal.Zero, "", domain.ErrUnknownItem
	}
	balance, err := uc.stockRepo.Get(item.ID)
	if err != nil {
		return decimal.Zero, "", err
	}
	return balance.Quantity, entity.DeriveStatus(balance.Quantity, item.MinLevel), nil
}

// ListMovements lista el libro de un artículo (más recientes primero).
func (uc *QueryUseCase) ListMovements(ctx context.Context, itemCode string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	item, err := uc.itemRepo.GetByCode(itemCode)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrUnknownItem
	}
	return uc.movRepo.ListByItem(item.ID, from, to, limit, offset)
}

// VerifyLedger recalcula la suma de deltas directamente del libro y la compara
// con la caché. Devuelve ambas; si difieren hay corrupción (no debería ocurrir:
// la caché solo se escribe en la transacción de cada movimiento).
func (uc *QueryUseCase) VerifyLedger(ctx context.Context, itemCode string) (ledgerSum, cached decimal.Decimal, err error) {
	item, err := uc.itemRepo.GetByCode(itemCode)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, decimal.Zero, domain.ErrUnknownItem
	}
	ledgerSum, err = uc.movRepo.SumByItem(item.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	balance, err := uc.stockRepo.Get(item.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return ledgerSum, balance.Quantity, nil
}
