package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TotalProducts    int64           `json:"total_products"`
	InventoryValue   decimal.Decimal `json:"inventory_value"` // suma de price * stock
	PendingPurchases int64           `json:"pending_purchases"`

	// Productos en o por debajo del umbral de reorden, más críticos primero
	LowStock []ProductResponse `json:"low_stock"`

	// Últimos movimientos del ledger, más recientes primero
	RecentMovements []MovementResponse `json:"recent_movements"`
}
