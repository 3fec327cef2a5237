// Package ledger expone la superficie de consulta del ledger de movimientos.
// El ledger es append-only: las escrituras ocurren únicamente desde el
// catálogo dentro de sus transacciones; aquí no existe operación que
// modifique o elimine un movimiento.
package ledger

import (
	"github.com/jortega/almacen-api/internal/application/dto"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// UseCase consultas del ledger.
type UseCase struct {
	movementRepo repository.MovementRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(movementRepo repository.MovementRepository) *UseCase {
	return &UseCase{movementRepo: movementRepo}
}

// ListRecent devuelve los movimientos más recientes (createdAt descendente).
func (uc *UseCase) ListRecent(limit int) (*dto.MovementListResponse, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	movements, err := uc.movementRepo.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	return toListResponse(movements, dto.PageResponse{Limit: limit}), nil
}

// ListByProduct devuelve los movimientos de un producto, más recientes primero.
func (uc *UseCase) ListByProduct(productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	movements, err := uc.movementRepo.ListByProduct(productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toListResponse(movements, dto.PageResponse{Limit: page.Limit, Offset: page.Offset}), nil
}

func toListResponse(movements []*entity.Movement, pageMeta dto.PageResponse) *dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, dto.NewMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items, Page: pageMeta}
}
