package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una orden de venta.
const (
	OrderPending      = "pending"
	OrderUnderProcess = "under_process"
	OrderReady        = "ready"
	OrderShipped      = "shipped"
	OrderDelivered    = "delivered"
	OrderCompleted    = "completed"
	OrderCancelled    = "cancelled"
)

// orderTransitions tabla de transiciones permitidas. cancelled solo es alcanzable
// antes del despacho: una vez consumido stock, la cancelación simple queda
// prohibida y debe manejarse por devolución (fuera de este motor).
var orderTransitions = map[string][]string{
	OrderPending:      {OrderUnderProcess, OrderCancelled},
	OrderUnderProcess: {OrderReady, OrderCancelled},
	OrderReady:        {OrderShipped, OrderCancelled},
	OrderShipped:      {OrderDelivered},
	OrderDelivered:    {OrderCompleted},
}

// ValidOrderStatus indica si el estado es conocido.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderUnderProcess, OrderReady, OrderShipped,
		OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// CanTransition verifica si la transición from -> to está permitida.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderTerminal indica si el estado es terminal (completed o cancelled).
func OrderTerminal(status string) bool {
	return status == OrderCompleted || status == OrderCancelled
}

// Order orden de cliente. TotalAmount siempre se recalcula desde las líneas,
// nunca se edita de forma independiente. Las órdenes no se borran: se cancelan.
type Order struct {
	ID          string
	Code        string // ORD-0001
	Customer    string
	Status      string
	Deadline    time.Time
	TotalAmount decimal.Decimal
	Lines       []OrderLine
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLine línea de una orden: referencia al artículo (no ownership).
type OrderLine struct {
	ID        string
	OrderID   string
	ItemID    string
	ItemCode  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// ComputeTotal suma las extensiones de línea (cantidad x precio unitario).
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return total
}

// OrderStatusChange registro histórico de un cambio de estado.
type OrderStatusChange struct {
	ID        string
	OrderID   string
	OldStatus string
	NewStatus string
	Comment   string
	ChangedBy string
	ChangedAt time.Time
}
