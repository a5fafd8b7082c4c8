package purchasing

import (
	"context"

	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// TxRunner transacción con los repositorios del motor de recepción de OCs.
// Una recepción nunca queda registrada en el libro sin que la línea de la OC
// lo refleje, ni al revés: misma unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		poRepo repository.PurchaseOrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		itemRepo repository.ItemRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
