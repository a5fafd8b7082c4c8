package analytics

import (
	"context"

	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

// DashboardStats agregados para el tablero: órdenes y OCs por estado y conteo
// de artículos por estado de stock derivado.
type DashboardStats struct {
	OrdersByStatus map[string]int `json:"orders_by_status"`
	POsByStatus    map[string]int `json:"purchase_orders_by_status"`
	StockStatus    map[string]int `json:"stock_status"`
}

// DashboardUseCase consultas agregadas de solo lectura.
type DashboardUseCase struct {
	repo repository.AnalyticsRepository
}

// NewDashboardUseCase construye el caso de uso del tablero.
func NewDashboardUseCase(repo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// Stats devuelve los agregados del tablero.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*DashboardStats, error) {
	orders, err := uc.repo.OrderCountsByStatus()
	if err != nil {
		return nil, err
	}
	pos, err := uc.repo.POCountsByStatus()
	if err != nil {
		return nil, err
	}
	stock, err := uc.repo.StockStatusCounts()
	if err != nil {
		return nil, err
	}
	return &DashboardStats{OrdersByStatus: orders, POsByStatus: pos, StockStatus: stock}, nil
}

// LowStock lista los artículos activos por debajo de su mínimo.
func (uc *DashboardUseCase) LowStock(ctx context.Context, limit int) ([]*repository.LowStockRow, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.repo.LowStockItems(limit)
}
