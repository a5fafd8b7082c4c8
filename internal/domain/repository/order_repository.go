package repository

import "github.com/jhoicas/Fabrica-api/internal/domain/entity"

// OrderRepository puerto de persistencia para órdenes y su historial de estados.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByCode(code string) (*entity.Order, error)
	// GetByCodeForUpdate bloquea la fila de la orden para serializar
	// transiciones concurrentes sobre la misma orden.
	GetByCodeForUpdate(code string) (*entity.Order, error)
	List(status, customer string, limit, offset int) ([]*entity.Order, error)
	UpdateStatus(orderID, status string) error
	AddStatusChange(change *entity.OrderStatusChange) error
	ListStatusHistory(orderID string) ([]*entity.OrderStatusChange, error)
	NextCode() (string, error)
}
