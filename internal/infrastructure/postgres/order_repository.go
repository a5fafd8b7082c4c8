package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo persistencia de órdenes: cabecera, líneas e historial de estados.
type OrderRepo struct {
	q Querier
}

func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, code, customer, status, deadline, total_amount, created_by, created_at, updated_at`

// Create inserta cabecera y líneas. Llamar dentro de una transacción.
func (r *OrderRepo) Create(order *entity.Order) error {
	ctx := context.Background()
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.Code, order.Customer, order.Status, order.Deadline,
		order.TotalAmount, order.CreatedBy, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	for _, l := range order.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, item_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			l.ID, order.ID, l.ItemID, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("create order line: %w", err)
		}
	}
	return nil
}

// GetByCode obtiene una orden con sus líneas.
func (r *OrderRepo) GetByCode(code string) (*entity.Order, error) {
	return r.getByCode(code, false)
}

// GetByCodeForUpdate bloquea la cabecera para serializar transiciones concurrentes.
func (r *OrderRepo) GetByCodeForUpdate(code string) (*entity.Order, error) {
	return r.getByCode(code, true)
}

func (r *OrderRepo) getByCode(code string, forUpdate bool) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE code = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var o entity.Order
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&o.ID, &o.Code, &o.Customer, &o.Status, &o.Deadline,
		&o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	lines, err := r.loadLines(o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) loadLines(orderID string) ([]entity.OrderLine, error) {
	query := `
		SELECT l.id, l.order_id, l.item_id, i.code, l.quantity, l.unit_price
		FROM order_lines l
		JOIN inventory_items i ON i.id = l.item_id
		WHERE l.order_id = $1
		ORDER BY i.code`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ItemCode, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List lista órdenes (sin líneas) con filtros opcionales.
func (r *OrderRepo) List(status, customer string, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	if customer != "" {
		query += fmt.Sprintf(" AND customer ILIKE $%d", pos)
		args = append(args, "%"+customer+"%")
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(
			&o.ID, &o.Code, &o.Customer, &o.Status, &o.Deadline,
			&o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la cabecera.
func (r *OrderRepo) UpdateStatus(orderID, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// AddStatusChange registra una entrada del historial de estados.
func (r *OrderRepo) AddStatusChange(change *entity.OrderStatusChange) error {
	query := `
		INSERT INTO order_status_history (id, order_id, old_status, new_status, comment, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		change.ID, change.OrderID, change.OldStatus, change.NewStatus,
		change.Comment, change.ChangedBy, change.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("add status change: %w", err)
	}
	return nil
}

// ListStatusHistory devuelve el historial en orden cronológico.
func (r *OrderRepo) ListStatusHistory(orderID string) ([]*entity.OrderStatusChange, error) {
	query := `
		SELECT id, order_id, old_status, new_status, comment, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderStatusChange
	for rows.Next() {
		var c entity.OrderStatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.OldStatus, &c.NewStatus, &c.Comment, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// NextCode reserva el siguiente código ORD-NNNN.
func (r *OrderRepo) NextCode() (string, error) {
	n, err := nextSequence(r.q, "order")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%04d", n), nil
}
