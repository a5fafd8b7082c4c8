package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de una orden nueva.
type OrderLineRequest struct {
	ItemCode  string          `json:"item_code"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest alta de orden (estado inicial pending).
type CreateOrderRequest struct {
	Customer string             `json:"customer"`
	Deadline time.Time          `json:"deadline"`
	Lines    []OrderLineRequest `json:"lines"`
}

// TransitionOrderRequest solicitud de transición de estado.
type TransitionOrderRequest struct {
	TargetStatus string `json:"target_status"`
	Comment      string `json:"comment,omitempty"`
}

// OrderLineResponse línea de orden.
type OrderLineResponse struct {
	ItemCode  string          `json:"item_code"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Extension decimal.Decimal `json:"extension"`
}

// OrderResponse orden con total recalculado desde las líneas.
type OrderResponse struct {
	Code        string              `json:"code"`
	Customer    string              `json:"customer"`
	Status      string              `json:"status"`
	Deadline    time.Time           `json:"deadline"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Lines       []OrderLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderStatusChangeResponse entrada del historial de estados.
type OrderStatusChangeResponse struct {
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Comment   string    `json:"comment,omitempty"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}
