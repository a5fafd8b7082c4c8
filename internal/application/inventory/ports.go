package inventory

import (
	"context"

	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad movimiento + balance +
// auditoría: o se confirma todo o no se confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		itemRepo repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
