package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo mantiene el saldo materializado por artículo.
type StockRepo struct {
	q Querier
}

func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get devuelve el saldo actual; si el artículo nunca tuvo movimientos devuelve saldo cero.
func (r *StockRepo) Get(itemID string) (*entity.StockBalance, error) {
	return r.get(itemID, false)
}

// GetForUpdate bloquea la fila de saldo dentro de la transacción (SELECT ... FOR UPDATE).
// Es el punto de serialización por artículo: dos movimientos concurrentes sobre el
// mismo artículo se encolan aquí.
func (r *StockRepo) GetForUpdate(itemID string) (*entity.StockBalance, error) {
	return r.get(itemID, true)
}

func (r *StockRepo) get(itemID string, forUpdate bool) (*entity.StockBalance, error) {
	query := `SELECT item_id, quantity, updated_at FROM stock_balances WHERE item_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var b entity.StockBalance
	err := r.q.QueryRow(context.Background(), query, itemID).Scan(&b.ItemID, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ItemID: itemID, Quantity: decimal.Zero, UpdatedAt: time.Now().UTC()}, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return &b, nil
}

// Upsert escribe el nuevo saldo. Solo debe llamarse dentro de la misma tx que
// inserta el movimiento que lo justifica.
func (r *StockRepo) Upsert(balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (item_id, quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query, balance.ItemID, balance.Quantity, balance.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}
