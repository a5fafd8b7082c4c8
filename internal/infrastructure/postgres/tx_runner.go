package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Fabrica-api/internal/application/auth"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/application/orders"
	"github.com/jhoicas/Fabrica-api/internal/application/purchasing"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de cada motor.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*OrderTxRunner)(nil)
var _ purchasing.TxRunner = (*PurchaseTxRunner)(nil)
var _ auth.TxRunner = (*UserTxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los
// repositorios del motor de inventario atados a la tx. Las fallas de
// serialización y deadlocks se traducen a ErrConcurrencyConflict para que el
// caso de uso reintente con lecturas frescas.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func runInTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isRetryableTxError(err) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewStockMovementRepository(tx),
			NewStockRepository(tx),
			NewItemRepository(tx),
			NewActivityLogRepository(tx),
		)
	})
}

// OrderTxRunner transacciones del motor de órdenes (despacho multi-línea).
type OrderTxRunner struct {
	pool *pgxpool.Pool
}

// NewOrderTxRunner construye el runner de órdenes.
func NewOrderTxRunner(pool *pgxpool.Pool) *OrderTxRunner {
	return &OrderTxRunner{pool: pool}
}

// Run inicia una transacción con los repos de órdenes e inventario.
func (r *OrderTxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewOrderRepository(tx),
			NewStockMovementRepository(tx),
			NewStockRepository(tx),
			NewItemRepository(tx),
			NewActivityLogRepository(tx),
		)
	})
}

// PurchaseTxRunner transacciones del motor de compras (recepción por línea).
type PurchaseTxRunner struct {
	pool *pgxpool.Pool
}

// NewPurchaseTxRunner construye el runner de compras.
func NewPurchaseTxRunner(pool *pgxpool.Pool) *PurchaseTxRunner {
	return &PurchaseTxRunner{pool: pool}
}

// Run inicia una transacción con los repos de OCs e inventario.
func (r *PurchaseTxRunner) Run(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewPurchaseOrderRepository(tx),
			NewStockMovementRepository(tx),
			NewStockRepository(tx),
			NewItemRepository(tx),
			NewActivityLogRepository(tx),
		)
	})
}

// UserTxRunner transacciones para mutaciones de usuarios.
type UserTxRunner struct {
	pool *pgxpool.Pool
}

// NewUserTxRunner construye el runner de usuarios.
func NewUserTxRunner(pool *pgxpool.Pool) *UserTxRunner {
	return &UserTxRunner{pool: pool}
}

// Run inicia una transacción con los repos de usuarios y auditoría.
func (r *UserTxRunner) Run(ctx context.Context, fn func(
	userRepo repository.UserRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewUserRepository(tx),
			NewActivityLogRepository(tx),
		)
	})
}
