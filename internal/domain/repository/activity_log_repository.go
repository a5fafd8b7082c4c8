package repository

import (
	"time"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// ActivityLogFilter filtros del listado de auditoría.
type ActivityLogFilter struct {
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// ActivityLogRepository puerto del registro de auditoría (write-once).
type ActivityLogRepository interface {
	// Append inserta una entrada. Debe invocarse dentro de la transacción de la
	// mutación que describe: si la escritura falla, la mutación se revierte.
	Append(entry *entity.ActivityLogEntry) error
	// List devuelve entradas ordenadas por secuencia ascendente y el total
	// que satisface el filtro.
	List(filter ActivityLogFilter) ([]*entity.ActivityLogEntry, int, error)
}
