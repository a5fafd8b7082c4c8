package entity

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Estados derivados del stock de un artículo. Nunca se persisten:
// se recalculan en cada lectura a partir del balance y el mínimo configurado.
const (
	StockStatusOut = "out-of-stock"
	StockStatusLow = "low-stock"
	StockStatusIn  = "in-stock"
)

// InventoryItem artículo de inventario. El código es inmutable una vez asignado
// (secuencial por prefijo de categoría, nunca reutilizado). El balance actual NO
// se guarda aquí: es un valor derivado del libro de movimientos (ver StockBalance).
type InventoryItem struct {
	ID        string
	Code      string // ITM-0001, MAT-0004, ...
	Name      string
	Category  string
	Unit      string // kg, unidad, litro, ...
	MinLevel  decimal.Decimal
	MaxLevel  decimal.Decimal
	UnitCost  *decimal.Decimal
	Supplier  string
	Location  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveStatus calcula el estado de stock. Función pura: mismo (balance, mínimo)
// produce siempre el mismo resultado.
//   - balance == 0            -> out-of-stock
//   - 0 < balance < mínimo    -> low-stock
//   - en otro caso            -> in-stock
func DeriveStatus(balance, minLevel decimal.Decimal) string {
	if balance.IsZero() {
		return StockStatusOut
	}
	if balance.GreaterThan(decimal.Zero) && balance.LessThan(minLevel) {
		return StockStatusLow
	}
	return StockStatusIn
}

// Prefijos de código conocidos por categoría. Categorías no mapeadas usan el
// prefijo genérico ITM; cada prefijo lleva su propia secuencia.
var categoryPrefixes = map[string]string{
	"raw-material":  "MAT",
	"finished-good": "FIN",
	"component":     "CMP",
	"packaging":     "PKG",
}

// CodePrefix devuelve el prefijo de código para una categoría.
func CodePrefix(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if p, ok := categoryPrefixes[key]; ok {
		return p
	}
	return "ITM"
}

// ValidLevels verifica mínimo <= máximo cuando ambos están definidos.
func (i *InventoryItem) ValidLevels() bool {
	if i.MinLevel.IsZero() || i.MaxLevel.IsZero() {
		return true
	}
	return i.MinLevel.LessThanOrEqual(i.MaxLevel)
}

// ValidItemName rechaza nombres vacíos o solo espacios/control.
func ValidItemName(name string) bool {
	for _, r := range name {
		if !unicode.IsSpace(r) && unicode.IsPrint(r) {
			return true
		}
	}
	return false
}
