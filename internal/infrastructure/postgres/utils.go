package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isRetryableTxError detecta fallas de serialización (40001) y deadlocks (40P01):
// la transacción perdió contra una escritura concurrente y puede reintentarse
// con lecturas frescas. La colisión sobre la ranura (item_id, seq) del libro
// también cuenta: dos tx leyeron la misma secuencia y la perdedora debe
// recalcular con el lock ya tomado.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return true
		}
		return pgErr.Code == "23505" && pgErr.ConstraintName == "stock_movements_item_seq_key"
	}
	return false
}

// nextSequence reserva el siguiente valor de una secuencia de códigos de negocio.
// Las secuencias solo crecen: los códigos nunca se reutilizan aunque la entidad
// se desactive.
func nextSequence(q Querier, scope string) (int64, error) {
	query := `
		INSERT INTO code_sequences (scope, next_value) VALUES ($1, 2)
		ON CONFLICT (scope)
		DO UPDATE SET next_value = code_sequences.next_value + 1
		RETURNING next_value - 1`
	var n int64
	if err := q.QueryRow(context.Background(), query, scope).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scope, err)
	}
	return n, nil
}
