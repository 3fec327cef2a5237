// Package reports contiene el caso de uso del resumen del dashboard.
// Proyección read-only sobre catálogo, ledger y compras; nunca escribe.
package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jortega/almacen-api/internal/application/dto"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

const (
	lowStockWidgetSize  = 5  // productos en el widget de reorden
	recentMovementsSize = 10 // movimientos en el widget de actividad
)

// DashboardUseCase genera el resumen del dashboard.
type DashboardUseCase struct {
	reportRepo   repository.ReportRepository
	movementRepo repository.MovementRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository, movementRepo repository.MovementRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, movementRepo: movementRepo}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. CountProducts + InventoryValue
//  2. ListLowStock(5)
//  3. CountPurchasesByStatus(pending)
//  4. ListRecent(10) del ledger
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	type totalsResult struct {
		count int64
		value decimal.Decimal
		err   error
	}
	type lowStockResult struct {
		products []*entity.Product
		err      error
	}
	type pendingResult struct {
		count int64
		err   error
	}
	type movementsResult struct {
		movements []*entity.Movement
		err       error
	}

	totalsCh := make(chan totalsResult, 1)
	lowCh := make(chan lowStockResult, 1)
	pendingCh := make(chan pendingResult, 1)
	movsCh := make(chan movementsResult, 1)

	go func() {
		count, err := uc.reportRepo.CountProducts(ctx)
		if err != nil {
			totalsCh <- totalsResult{err: err}
			return
		}
		value, err := uc.reportRepo.InventoryValue(ctx)
		totalsCh <- totalsResult{count: count, value: value, err: err}
	}()
	go func() {
		products, err := uc.reportRepo.ListLowStock(ctx, lowStockWidgetSize)
		lowCh <- lowStockResult{products: products, err: err}
	}()
	go func() {
		count, err := uc.reportRepo.CountPurchasesByStatus(ctx, entity.PurchaseStatusPending)
		pendingCh <- pendingResult{count: count, err: err}
	}()
	go func() {
		movements, err := uc.movementRepo.ListRecent(recentMovementsSize)
		movsCh <- movementsResult{movements: movements, err: err}
	}()

	totals := <-totalsCh
	low := <-lowCh
	pending := <-pendingCh
	movs := <-movsCh

	if totals.err != nil {
		return nil, fmt.Errorf("totales de inventario: %w", totals.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("productos bajo mínimo: %w", low.err)
	}
	if pending.err != nil {
		return nil, fmt.Errorf("compras pendientes: %w", pending.err)
	}
	if movs.err != nil {
		return nil, fmt.Errorf("movimientos recientes: %w", movs.err)
	}

	lowStock := make([]dto.ProductResponse, 0, len(low.products))
	for _, p := range low.products {
		lowStock = append(lowStock, dto.NewProductResponse(p))
	}
	recent := make([]dto.MovementResponse, 0, len(movs.movements))
	for _, m := range movs.movements {
		recent = append(recent, dto.NewMovementResponse(m))
	}

	return &dto.DashboardSummaryDTO{
		TotalProducts:    totals.count,
		InventoryValue:   totals.value,
		PendingPurchases: pending.count,
		LowStock:         lowStock,
		RecentMovements:  recent,
	}, nil
}
