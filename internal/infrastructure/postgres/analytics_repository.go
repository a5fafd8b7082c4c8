package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados de solo lectura para el dashboard. Siempre opera
// sobre el pool, nunca dentro de una transacción de mutación.
type AnalyticsRepo struct {
	q Querier
}

func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func (r *AnalyticsRepo) OrderCountsByStatus() (map[string]int, error) {
	return r.countsByStatus(`SELECT status, COUNT(*) FROM orders GROUP BY status`)
}

func (r *AnalyticsRepo) POCountsByStatus() (map[string]int, error) {
	return r.countsByStatus(`SELECT status, COUNT(*) FROM purchase_orders GROUP BY status`)
}

func (r *AnalyticsRepo) countsByStatus(query string) (map[string]int, error) {
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("counts by status: %w", err)
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// StockStatusCounts clasifica artículos activos según su saldo contra el
// mínimo configurado. Los artículos sin fila de saldo cuentan como saldo cero.
func (r *AnalyticsRepo) StockStatusCounts() (map[string]int, error) {
	query := `
		SELECT
			CASE
				WHEN COALESCE(b.quantity, 0) <= 0 THEN 'out-of-stock'
				WHEN COALESCE(b.quantity, 0) < i.min_level THEN 'low-stock'
				ELSE 'in-stock'
			END AS status,
			COUNT(*)
		FROM inventory_items i
		LEFT JOIN stock_balances b ON b.item_id = i.id
		WHERE i.active
		GROUP BY 1`
	return r.countsByStatus(query)
}

// LowStockItems lista artículos activos bajo mínimo, los más críticos primero.
func (r *AnalyticsRepo) LowStockItems(limit int) ([]*repository.LowStockRow, error) {
	query := `
		SELECT i.code, i.name, i.category, COALESCE(b.quantity, 0), i.min_level, i.unit
		FROM inventory_items i
		LEFT JOIN stock_balances b ON b.item_id = i.id
		WHERE i.active AND COALESCE(b.quantity, 0) < i.min_level
		ORDER BY COALESCE(b.quantity, 0) / NULLIF(i.min_level, 0) NULLS FIRST, i.code
		LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("low stock items: %w", err)
	}
	defer rows.Close()
	var list []*repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ItemCode, &row.Name, &row.Category, &row.Balance, &row.MinLevel, &row.Unit); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}
