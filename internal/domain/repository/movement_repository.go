package repository

import "github.com/jortega/almacen-api/internal/domain/entity"

// MovementRepository define el puerto de persistencia para el ledger de
// movimientos. El puerto no expone update ni delete: el ledger es append-only
// por construcción.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error)
	ListRecent(limit int) ([]*entity.Movement, error)
}
