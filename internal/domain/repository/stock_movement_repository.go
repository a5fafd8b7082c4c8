package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos (append-only:
// los movimientos nunca se mutan ni se borran).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// NextSeq devuelve la siguiente secuencia por artículo. Llamar con la fila
	// de balance ya bloqueada para garantizar monotonicidad.
	NextSeq(itemID string) (int64, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// SumByItem suma todos los deltas del artículo directamente del libro.
	// Permite verificar que la fila materializada no divergió de la historia.
	SumByItem(itemID string) (decimal.Decimal, error)
}
