package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo bitácora de auditoría. Solo inserta y lee: no hay UPDATE
// ni DELETE sobre activity_logs.
type ActivityLogRepo struct {
	q Querier
}

func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Append inserta una entrada; el id lo asigna la secuencia global de la tabla.
func (r *ActivityLogRepo) Append(entry *entity.ActivityLogEntry) error {
	query := `
		INSERT INTO activity_logs (actor, entity_type, entity_id, action, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		entry.Actor, entry.EntityType, entry.EntityID, entry.Action,
		entry.Before, entry.After, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// List devuelve entradas en orden de secuencia ascendente junto con el total
// que satisface el filtro.
func (r *ActivityLogRepo) List(filter repository.ActivityLogFilter) ([]*entity.ActivityLogEntry, int, error) {
	ctx := context.Background()
	where := ` WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.EntityType != "" {
		where += fmt.Sprintf(" AND entity_type = $%d", pos)
		args = append(args, filter.EntityType)
		pos++
	}
	if filter.EntityID != "" {
		where += fmt.Sprintf(" AND entity_id = $%d", pos)
		args = append(args, filter.EntityID)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at < $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	query := `
		SELECT id, actor, entity_type, entity_id, action, before, after, created_at
		FROM activity_logs` + where + fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ActivityLogEntry
	for rows.Next() {
		var e entity.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.EntityType, &e.EntityID, &e.Action, &e.Before, &e.After, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity log: %w", err)
		}
		list = append(list, &e)
	}
	return list, total, rows.Err()
}
