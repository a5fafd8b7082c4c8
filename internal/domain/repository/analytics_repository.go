package repository

import "github.com/shopspring/decimal"

// LowStockRow fila del reporte de artículos bajo mínimo.
type LowStockRow struct {
	ItemCode string
	Name     string
	Category string
	Balance  decimal.Decimal
	MinLevel decimal.Decimal
	Unit     string
}

// AnalyticsRepository consultas agregadas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	OrderCountsByStatus() (map[string]int, error)
	POCountsByStatus() (map[string]int, error)
	// StockStatusCounts cuenta artículos activos por estado derivado
	// (in-stock, low-stock, out-of-stock) calculado sobre balance y mínimo.
	StockStatusCounts() (map[string]int, error)
	LowStockItems(limit int) ([]*LowStockRow, error)
}
