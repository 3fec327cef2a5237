package repository

import (
	"time"

	"github.com/jortega/almacen-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para órdenes de compra.
type PurchaseRepository interface {
	Create(purchase *entity.PurchaseOrder) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la fila de la orden para serializar las
	// transiciones de estado (evita doble recepción concurrente).
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
	UpdateStatus(id, status string, receivedAt *time.Time) error
	ListRecent(limit, offset int) ([]*entity.PurchaseOrder, error)
}
