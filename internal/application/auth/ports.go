package auth

import (
	"context"

	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// TxRunner transacción para mutaciones de usuarios: el alta, reseteo o
// desactivación se confirma junto con su entrada de auditoría.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
