package repository

import "github.com/jhoicas/Fabrica-api/internal/domain/entity"

// StockRepository puerto para la fila materializada de balance por artículo.
type StockRepository interface {
	Get(itemID string) (*entity.StockBalance, error)
	// GetForUpdate obtiene el balance bloqueando la fila (SELECT FOR UPDATE).
	// Serializa todas las operaciones leer-luego-escribir sobre el mismo
	// artículo; artículos distintos avanzan en paralelo.
	GetForUpdate(itemID string) (*entity.StockBalance, error)
	Upsert(balance *entity.StockBalance) error
}
