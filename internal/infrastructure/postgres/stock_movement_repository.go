package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo es el libro mayor de movimientos (append-only).
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, item_id, seq, kind, quantity, previous_balance, new_balance, reason, actor, cause_type, cause_ref, created_at`

// Create inserta un movimiento. El índice único (item_id, seq) rechaza
// secuencias duplicadas si dos tx lograran colarse por la misma ranura.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ItemID, m.Seq, m.Kind, m.Quantity, m.PreviousBalance,
		m.NewBalance, m.Reason, m.Actor, m.CauseType, m.CauseRef, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// NextSeq devuelve la siguiente secuencia por artículo. Seguro solo bajo el
// lock de saldo tomado por GetForUpdate en la misma transacción.
func (r *StockMovementRepo) NextSeq(itemID string) (int64, error) {
	var next int64
	query := `SELECT COALESCE(MAX(seq), 0) + 1 FROM stock_movements WHERE item_id = $1`
	if err := r.q.QueryRow(context.Background(), query, itemID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next movement seq: %w", err)
	}
	return next, nil
}

// ListByItem devuelve los movimientos de un artículo en orden de secuencia,
// acotados opcionalmente por fecha de registro ([from, to)).
func (r *StockMovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE item_id = $1`
	args := []any{itemID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY seq LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ItemID, &m.Seq, &m.Kind, &m.Quantity, &m.PreviousBalance,
			&m.NewBalance, &m.Reason, &m.Actor, &m.CauseType, &m.CauseRef, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByItem suma los deltas del libro mayor; sirve para verificar el saldo cacheado.
func (r *StockMovementRepo) SumByItem(itemID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE item_id = $1`
	if err := r.q.QueryRow(context.Background(), query, itemID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
