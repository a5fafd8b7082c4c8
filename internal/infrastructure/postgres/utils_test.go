package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// Dos transacciones pueden leer la misma secuencia libre de movimientos antes
// de que exista la fila de balance que serializa al resto. La perdedora choca
// contra el índice único (item_id, seq) y debe reintentar con lecturas
// frescas, no emerger como error interno.
func TestIsRetryableTxError_Clasificacion(t *testing.T) {
	casos := []struct {
		nombre    string
		err       error
		retryable bool
	}{
		{"falla de serialización", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{
			"colisión de ranura de secuencia",
			&pgconn.PgError{Code: "23505", ConstraintName: "stock_movements_item_seq_key"},
			true,
		},
		{
			"única de código de artículo (es ErrDuplicate, no reintento)",
			&pgconn.PgError{Code: "23505", ConstraintName: "inventory_items_code_key"},
			false,
		},
		{"check de balance negativo", &pgconn.PgError{Code: "23514"}, false},
		{"error no-postgres", errors.New("conexión caída"), false},
	}
	for _, c := range casos {
		assert.Equal(t, c.retryable, isRetryableTxError(c.err), c.nombre)
	}

	// Los repos envuelven con %w; la clasificación atraviesa el wrapping.
	envuelto := fmt.Errorf("create movement: %w",
		&pgconn.PgError{Code: "23505", ConstraintName: "stock_movements_item_seq_key"})
	assert.True(t, isRetryableTxError(envuelto))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
}
