package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo persistencia de órdenes de compra.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const poColumns = `id, code, supplier, status, expected_date, notes, created_by, created_at, updated_at`

// Create inserta cabecera y líneas. Llamar dentro de una transacción.
func (r *PurchaseOrderRepo) Create(po *entity.PurchaseOrder) error {
	ctx := context.Background()
	query := `
		INSERT INTO purchase_orders (` + poColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		po.ID, po.Code, po.Supplier, po.Status, po.ExpectedDate,
		po.Notes, po.CreatedBy, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create purchase order: %w", err)
	}
	for _, l := range po.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_lines (id, po_id, item_id, ordered_qty, received_qty, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, po.ID, l.ItemID, l.OrderedQty, l.ReceivedQty, l.UnitCost,
		)
		if err != nil {
			return fmt.Errorf("create po line: %w", err)
		}
	}
	return nil
}

// GetByCode obtiene una OC con sus líneas.
func (r *PurchaseOrderRepo) GetByCode(code string) (*entity.PurchaseOrder, error) {
	return r.getByCode(code, false)
}

// GetByCodeForUpdate bloquea la cabecera para serializar recepciones concurrentes.
func (r *PurchaseOrderRepo) GetByCodeForUpdate(code string) (*entity.PurchaseOrder, error) {
	return r.getByCode(code, true)
}

func (r *PurchaseOrderRepo) getByCode(code string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE code = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var po entity.PurchaseOrder
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&po.ID, &po.Code, &po.Supplier, &po.Status, &po.ExpectedDate,
		&po.Notes, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	lines, err := r.loadLines(po.ID)
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return &po, nil
}

func (r *PurchaseOrderRepo) loadLines(poID string) ([]entity.PurchaseOrderLine, error) {
	query := `
		SELECT l.id, l.po_id, l.item_id, i.code, l.ordered_qty, l.received_qty, l.unit_cost
		FROM purchase_order_lines l
		JOIN inventory_items i ON i.id = l.item_id
		WHERE l.po_id = $1
		ORDER BY i.code`
	rows, err := r.q.Query(context.Background(), query, poID)
	if err != nil {
		return nil, fmt.Errorf("load po lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.PurchaseOrderLine
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.POID, &l.ItemID, &l.ItemCode, &l.OrderedQty, &l.ReceivedQty, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan po line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List lista órdenes de compra (sin líneas) con filtros opcionales.
func (r *PurchaseOrderRepo) List(status, supplier string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE 1=1`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	if supplier != "" {
		query += fmt.Sprintf(" AND supplier ILIKE $%d", pos)
		args = append(args, "%"+supplier+"%")
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		if err := rows.Scan(
			&po.ID, &po.Code, &po.Supplier, &po.Status, &po.ExpectedDate,
			&po.Notes, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, &po)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la cabecera.
func (r *PurchaseOrderRepo) UpdateStatus(poID, status string) error {
	query := `UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, poID, status); err != nil {
		return fmt.Errorf("update po status: %w", err)
	}
	return nil
}

// UpdateLineReceived fija la cantidad recibida acumulada de una línea.
func (r *PurchaseOrderRepo) UpdateLineReceived(lineID string, received decimal.Decimal) error {
	query := `UPDATE purchase_order_lines SET received_qty = $2 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, lineID, received); err != nil {
		return fmt.Errorf("update po line received: %w", err)
	}
	return nil
}

// NextCode reserva el siguiente código PO-NNNN.
func (r *PurchaseOrderRepo) NextCode() (string, error) {
	n, err := nextSequence(r.q, "purchase_order")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%04d", n), nil
}
