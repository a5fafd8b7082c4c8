package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// PurchaseOrderRepository puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(po *entity.PurchaseOrder) error
	GetByCode(code string) (*entity.PurchaseOrder, error)
	// GetByCodeForUpdate bloquea la cabecera de la OC (y sus líneas se leen
	// dentro de la misma transacción) para serializar recepciones concurrentes.
	GetByCodeForUpdate(code string) (*entity.PurchaseOrder, error)
	List(status, supplier string, limit, offset int) ([]*entity.PurchaseOrder, error)
	UpdateStatus(poID, status string) error
	UpdateLineReceived(lineID string, received decimal.Decimal) error
	NextCode() (string, error)
}
