package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jortega/almacen-api/internal/domain/entity"
)

// ReportRepository consultas read-only agregadas para el dashboard.
// Nunca escribe; es una proyección sobre products, movements y purchase_orders.
type ReportRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	// InventoryValue suma price * stock de todos los productos.
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
	// ListLowStock devuelve productos con stock <= min_stock, más críticos primero.
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
	CountPurchasesByStatus(ctx context.Context, status string) (int64, error)
}
