package dto

import (
	"encoding/json"
	"time"
)

// ActivityLogQuery filtros del listado de auditoría.
type ActivityLogQuery struct {
	EntityType string     `query:"entity_type"`
	EntityID   string     `query:"entity_id"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
	PageRequest
}

// ActivityLogEntryResponse entrada de auditoría.
type ActivityLogEntryResponse struct {
	Seq        int64           `json:"seq"`
	Actor      string          `json:"actor"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ActivityLogResponse página de auditoría ordenada por secuencia ascendente.
type ActivityLogResponse struct {
	Entries []ActivityLogEntryResponse `json:"entries"`
	Page    PageResponse               `json:"page"`
}
