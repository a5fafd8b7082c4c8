package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance balance actual de un artículo (fila materializada).
// Es una caché incremental del libro de movimientos: solo se actualiza dentro
// de la misma transacción que inserta el movimiento, por lo que siempre es
// igual a la suma de los deltas. Nunca puede quedar negativa.
type StockBalance struct {
	ItemID    string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
