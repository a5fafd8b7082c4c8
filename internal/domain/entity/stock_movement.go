package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clases de movimiento del libro de stock. El delta firmado se deriva de la clase:
// receipt y adjustment-increase suman; consumption y adjustment-decrease restan;
// correction lleva delta explícito con signo (ajuste administrativo).
const (
	MovementReceipt        = "receipt"
	MovementConsumption    = "consumption"
	MovementAdjustIncrease = "adjustment-increase"
	MovementAdjustDecrease = "adjustment-decrease"
	MovementCorrection     = "correction"
)

// Tipos de causa que pueden originar un movimiento (referencia cruzada, no ownership).
const (
	CauseOrder         = "order"
	CausePurchaseOrder = "purchase_order"
)

// StockMovement entrada inmutable del libro de movimientos (append-only).
// Seq es monotónico por artículo; Quantity es el delta firmado ya aplicado.
// PreviousBalance y NewBalance dejan verificable la reconstrucción del balance.
type StockMovement struct {
	ID              string
	ItemID          string
	Seq             int64
	Kind            string
	Quantity        decimal.Decimal // delta firmado
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Reason          string
	Actor           string // UserID
	CauseType       string // order | purchase_order | "" (movimiento directo)
	CauseRef        string // código de la orden u OC que lo originó
	CreatedAt       time.Time
}

// ValidKind indica si la clase de movimiento es conocida.
func ValidKind(kind string) bool {
	switch kind {
	case MovementReceipt, MovementConsumption, MovementAdjustIncrease,
		MovementAdjustDecrease, MovementCorrection:
		return true
	}
	return false
}

// SignedDelta convierte (clase, cantidad) en el delta firmado a aplicar.
// Para correction la cantidad ya viene con signo y se devuelve tal cual.
func SignedDelta(kind string, quantity decimal.Decimal) decimal.Decimal {
	switch kind {
	case MovementConsumption, MovementAdjustDecrease:
		return quantity.Neg()
	default:
		return quantity
	}
}
