package purchasing

import (
	"context"

	"github.com/jortega/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de compras e inventario atados a esa tx. La recepción de una
// orden (N ajustes de stock + N movimientos + cambio de estado) es todo o nada.
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		purchaseRepo repository.PurchaseRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
	) error) error
}
