package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. completed nunca lo asigna un caller:
// se deriva del estado agregado de recepción de las líneas.
const (
	POOpen              = "open"
	POPartiallyReceived = "partially_received"
	POCompleted         = "completed"
	POCancelled         = "cancelled"
)

// PurchaseOrder orden de compra a proveedor.
type PurchaseOrder struct {
	ID           string
	Code         string // PO-0001
	Supplier     string
	Status       string
	ExpectedDate time.Time
	Notes        string
	Lines        []PurchaseOrderLine
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseOrderLine línea de OC. ReceivedQty arranca en cero y solo crece por
// recepciones; nunca puede superar OrderedQty.
type PurchaseOrderLine struct {
	ID          string
	POID        string
	ItemID      string
	ItemCode    string
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal
	UnitCost    decimal.Decimal
}

// FullyReceived indica si la línea quedó recibida por completo.
func (l *PurchaseOrderLine) FullyReceived() bool {
	return l.ReceivedQty.GreaterThanOrEqual(l.OrderedQty)
}

// DerivePOStatus recalcula el estado desde las líneas: completed cuando todas
// están completas, partially_received cuando alguna recibió algo, open si no.
// No aplica sobre órdenes canceladas.
func DerivePOStatus(lines []PurchaseOrderLine) string {
	if len(lines) == 0 {
		return POOpen
	}
	all := true
	some := false
	for _, l := range lines {
		if l.ReceivedQty.GreaterThan(decimal.Zero) {
			some = true
		}
		if !l.FullyReceived() {
			all = false
		}
	}
	switch {
	case all:
		return POCompleted
	case some:
		return POPartiallyReceived
	default:
		return POOpen
	}
}

// POClosed indica si la orden ya no acepta recepciones.
func POClosedStatus(status string) bool {
	return status == POCompleted || status == POCancelled
}
