package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// POLineRequest línea de una orden de compra nueva.
type POLineRequest struct {
	ItemCode   string          `json:"item_code"`
	OrderedQty decimal.Decimal `json:"ordered_qty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// CreatePORequest alta de orden de compra (estado inicial open).
type CreatePORequest struct {
	Supplier     string          `json:"supplier"`
	ExpectedDate time.Time       `json:"expected_date"`
	Notes        string          `json:"notes,omitempty"`
	Lines        []POLineRequest `json:"lines"`
}

// ReceiveLineRequest recepción parcial o total contra una línea.
type ReceiveLineRequest struct {
	LineID   string          `json:"line_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// POLineResponse línea de OC con avance de recepción.
type POLineResponse struct {
	LineID      string          `json:"line_id"`
	ItemCode    string          `json:"item_code"`
	OrderedQty  decimal.Decimal `json:"ordered_qty"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// POResponse orden de compra.
type POResponse struct {
	Code         string           `json:"code"`
	Supplier     string           `json:"supplier"`
	Status       string           `json:"status"`
	ExpectedDate time.Time        `json:"expected_date"`
	Notes        string           `json:"notes,omitempty"`
	Lines        []POLineResponse `json:"lines"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
