package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jortega/almacen-api/internal/application/catalog"
	"github.com/jortega/almacen-api/internal/application/dto"
	"github.com/jortega/almacen-api/internal/domain"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

// UseCase gestiona el ciclo de vida de órdenes de compra.
//
// Máquina de estados: pending -> received | cancelled (ambos terminales).
// Solo pending -> received tiene efecto secundario: un ajuste de stock por
// línea, delegado al catálogo dentro de la misma transacción. El tracker
// nunca escribe stock directamente (un único escritor por recurso).
type UseCase struct {
	txRunner     TxRunner
	purchaseRepo repository.PurchaseRepository // lecturas fuera de tx
	productRepo  repository.ProductRepository
	catalog      *catalog.UseCase
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	catalogUC *catalog.UseCase,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		catalog:      catalogUC,
	}
}

// Create crea una orden en estado pending y devuelve su id.
// Total y subtotales se calculan aquí y quedan congelados: las líneas no se
// editan después de la creación.
func (uc *UseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest, actor dto.Actor) (*dto.PurchaseResponse, error) {
	in.SupplierName = strings.TrimSpace(in.SupplierName)
	if in.SupplierName == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	items := make([]entity.PurchaseItem, 0, len(in.Items))
	total := decimal.Zero
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		subtotal := decimal.NewFromInt(it.Quantity).Mul(it.UnitPrice)
		items = append(items, entity.PurchaseItem{
			ProductID:   it.ProductID,
			ProductName: product.Name, // snapshot, sobrevive renombres
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	purchase := &entity.PurchaseOrder{
		ID:           newPurchaseID(),
		SupplierName: in.SupplierName,
		Items:        items,
		Total:        total,
		Status:       entity.PurchaseStatusPending,
		Notes:        in.Notes,
		CreatedBy:    actor.UserID,
		CreatedAt:    time.Now(),
	}
	if err := uc.purchaseRepo.Create(purchase); err != nil {
		return nil, err
	}
	resp := dto.NewPurchaseResponse(purchase)
	return &resp, nil
}

// UpdateStatus ejecuta la máquina de estados en una sola transacción.
//
// pending -> received: bloquea la orden, ajusta stock por cada línea vía el
// catálogo (movimiento PURCHASE con razón "Compra #<id> recibida") y fija
// ReceivedAt. Una segunda recepción encuentra el estado terminal y retorna
// ErrInvalidTransition sin tocar stock: el incremento se aplica exactamente
// una vez.
//
// pending -> cancelled: solo cambia el estado.
func (uc *UseCase) UpdateStatus(ctx context.Context, id, status string, actor dto.Actor) (*dto.PurchaseResponse, error) {
	if !entity.IsValidPurchaseStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	var out *dto.PurchaseResponse
	err := uc.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
	) error {
		purchase, err := purchaseRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if purchase == nil {
			return domain.ErrNotFound
		}
		// Única transición válida: desde pending hacia un estado distinto.
		if purchase.IsTerminal() || status == entity.PurchaseStatusPending {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		if status == entity.PurchaseStatusReceived {
			reason := fmt.Sprintf("Compra #%s recibida", purchase.ID)
			for _, item := range purchase.Items {
				if _, _, err := uc.catalog.AdjustStockInTx(productRepo, movementRepo, catalog.AdjustInput{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					Type:      entity.MovementTypePurchase,
					Reason:    reason,
					Actor:     actor,
					Now:       now,
				}); err != nil {
					return err // rollback: ninguna línea queda aplicada
				}
			}
			purchase.ReceivedAt = &now
		}
		if err := purchaseRepo.UpdateStatus(purchase.ID, status, purchase.ReceivedAt); err != nil {
			return err
		}
		purchase.Status = status
		resp := dto.NewPurchaseResponse(purchase)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID obtiene la orden con sus líneas. ErrNotFound si no existe.
func (uc *UseCase) GetByID(id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.NewPurchaseResponse(purchase)
	return &resp, nil
}

// ListRecent lista órdenes por fecha de creación descendente.
func (uc *UseCase) ListRecent(page dto.PageRequest) (*dto.PurchaseListResponse, error) {
	page.DefaultPage()
	purchases, err := uc.purchaseRepo.ListRecent(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, dto.NewPurchaseResponse(p))
	}
	return &dto.PurchaseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// newPurchaseID genera un id legible tipo "OC-3F9A21B4".
func newPurchaseID() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "OC-" + short
}
