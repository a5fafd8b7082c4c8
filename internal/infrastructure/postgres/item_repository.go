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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, code, name, category, unit, min_level, max_level, unit_cost, supplier, location, active, created_at, updated_at`

// Create persiste un artículo nuevo.
func (r *ItemRepo) Create(item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Code, item.Name, item.Category, item.Unit,
		item.MinLevel, item.MaxLevel, item.UnitCost, item.Supplier,
		item.Location, item.Active, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create item: %w", err)
	}
	// Siembra el saldo en cero: el lock de fila de GetForUpdate necesita que la
	// fila exista desde el nacimiento del artículo.
	_, err = r.q.Exec(context.Background(), `
		INSERT INTO stock_balances (item_id, quantity, updated_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (item_id) DO NOTHING`,
		item.ID, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("seed stock balance: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID interno.
func (r *ItemRepo) GetByID(id string) (*entity.InventoryItem, error) {
	return r.getOne(`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetByCode obtiene un artículo por código de negocio.
func (r *ItemRepo) GetByCode(code string) (*entity.InventoryItem, error) {
	return r.getOne(`SELECT `+itemColumns+` FROM inventory_items WHERE code = $1`, code)
}

func (r *ItemRepo) getOne(query string, arg any) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&it.ID, &it.Code, &it.Name, &it.Category, &it.Unit,
		&it.MinLevel, &it.MaxLevel, &it.UnitCost, &it.Supplier,
		&it.Location, &it.Active, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// List lista artículos con filtro opcional por categoría.
func (r *ItemRepo) List(category string, activeOnly bool, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE 1=1`
	args := []any{}
	pos := 1
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", pos)
		args = append(args, category)
		pos++
	}
	if activeOnly {
		query += " AND active"
	}
	query += fmt.Sprintf(" ORDER BY code LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		var it entity.InventoryItem
		if err := rows.Scan(
			&it.ID, &it.Code, &it.Name, &it.Category, &it.Unit,
			&it.MinLevel, &it.MaxLevel, &it.UnitCost, &it.Supplier,
			&it.Location, &it.Active, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update actualiza los atributos editables (el código es inmutable).
func (r *ItemRepo) Update(item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $2, category = $3, unit = $4, min_level = $5, max_level = $6,
		    unit_cost = $7, supplier = $8, location = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Category, item.Unit, item.MinLevel,
		item.MaxLevel, item.UnitCost, item.Supplier, item.Location, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Deactivate marca el artículo como inactivo (nunca se borra en duro).
func (r *ItemRepo) Deactivate(id string) error {
	query := `UPDATE inventory_items SET active = false, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}
	return nil
}

// NextCode reserva el siguiente código para el prefijo (ITM-0001, MAT-0002, ...).
func (r *ItemRepo) NextCode(prefix string) (string, error) {
	n, err := nextSequence(r.q, "item:"+prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, n), nil
}
