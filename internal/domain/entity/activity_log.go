package entity

import "time"

// Tipos de entidad auditados.
const (
	EntityItem          = "inventory_item"
	EntityOrder         = "order"
	EntityPurchaseOrder = "purchase_order"
	EntityUser          = "user"
)

// ActivityLogEntry registro de auditoría append-only. Se escribe siempre en la
// misma transacción que la mutación que describe: ninguna mutación puede
// confirmarse sin su entrada correspondiente. ID es la secuencia global.
type ActivityLogEntry struct {
	ID         int64
	Actor      string // UserID
	EntityType string
	EntityID   string // código de negocio (ITM-0001, ORD-0001, ...)
	Action     string
	Before     []byte // snapshot JSON opcional del estado previo
	After      []byte // snapshot JSON del estado resultante
	CreatedAt  time.Time
}
