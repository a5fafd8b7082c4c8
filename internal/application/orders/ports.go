package orders

import (
	"context"

	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// TxRunner transacción con los repositorios que necesita el motor de órdenes.
// El despacho consume stock de varias líneas: todo dentro de una sola
// transacción, o se aplica el grupo completo de movimientos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		itemRepo repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
