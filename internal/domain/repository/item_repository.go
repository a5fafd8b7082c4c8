package repository

import "github.com/jhoicas/Fabrica-api/internal/domain/entity"

// ItemRepository puerto de persistencia para artículos de inventario (DIP).
type ItemRepository interface {
	Create(item *entity.InventoryItem) error
	GetByID(id string) (*entity.InventoryItem, error)
	GetByCode(code string) (*entity.InventoryItem, error)
	List(category string, activeOnly bool, limit, offset int) ([]*entity.InventoryItem, error)
	Update(item *entity.InventoryItem) error
	Deactivate(id string) error
	// NextCode reserva y devuelve el siguiente código para el prefijo dado
	// (secuencia monotónica, nunca reutilizada). Debe llamarse dentro de la
	// transacción que crea el artículo.
	NextCode(prefix string) (string, error)
}
