package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest alta de artículo. El código se asigna en el servidor
// (secuencial por prefijo de categoría). InitialStock opcional: se registra
// como movimiento receipt en la misma transacción del alta.
type CreateItemRequest struct {
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Unit         string           `json:"unit"`
	MinLevel     decimal.Decimal  `json:"min_level"`
	MaxLevel     decimal.Decimal  `json:"max_level"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Supplier     string           `json:"supplier,omitempty"`
	Location     string           `json:"location,omitempty"`
	InitialStock *decimal.Decimal `json:"initial_stock,omitempty"`
}

// UpdateItemRequest actualización parcial de atributos del artículo.
// El código y el balance no son editables por esta vía.
type UpdateItemRequest struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Unit     *string          `json:"unit,omitempty"`
	MinLevel *decimal.Decimal `json:"min_level,omitempty"`
	MaxLevel *decimal.Decimal `json:"max_level,omitempty"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Supplier *string          `json:"supplier,omitempty"`
	Location *string          `json:"location,omitempty"`
}

// ItemResponse artículo con balance y estado derivados en el momento de la lectura.
type ItemResponse struct {
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Unit      string           `json:"unit"`
	MinLevel  decimal.Decimal  `json:"min_level"`
	MaxLevel  decimal.Decimal  `json:"max_level"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Supplier  string           `json:"supplier,omitempty"`
	Location  string           `json:"location,omitempty"`
	Active    bool             `json:"active"`
	Balance   decimal.Decimal  `json:"balance"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RecordMovementRequest registro directo de un movimiento de stock.
// Quantity estrictamente positiva salvo en correction (delta firmado).
type RecordMovementRequest struct {
	ItemCode string          `json:"item_code"`
	Kind     string          `json:"kind"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// MovementResponse movimiento registrado.
type MovementResponse struct {
	ID              string          `json:"id"`
	ItemCode        string          `json:"item_code"`
	Seq             int64           `json:"seq"`
	Kind            string          `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Reason          string          `json:"reason"`
	Actor           string          `json:"actor"`
	CauseType       string          `json:"cause_type,omitempty"`
	CauseRef        string          `json:"cause_ref,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BalanceResponse balance y estado derivado de un artículo.
type BalanceResponse struct {
	ItemCode string          `json:"item_code"`
	Balance  decimal.Decimal `json:"balance"`
	Status   string          `json:"status"`
}
