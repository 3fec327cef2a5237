package catalog

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jortega/almacen-api/internal/application/dto"
	"github.com/jortega/almacen-api/internal/domain"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UseCase es el catálogo de productos: único escritor de products.stock.
// Todo cambio de stock pasa por AdjustStockInTx, que bloquea la fila del
// producto y registra exactamente un movimiento en el ledger dentro de la
// misma transacción.
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository // lecturas fuera de tx
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, productRepo repository.ProductRepository) *UseCase {
	return &UseCase{txRunner: txRunner, productRepo: productRepo}
}

// Create crea un producto. El stock inicial no genera movimiento: el ledger
// registra cambios, y la creación no es un cambio.
func (uc *UseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.LessThan(decimal.Zero) || in.Stock < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.productRepo.GetBySKU(in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Location == "" {
		in.Location = entity.DefaultLocation
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Location:    in.Location,
		Price:       in.Price,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	resp := dto.NewProductResponse(product)
	return &resp, nil
}

// GetByID obtiene un producto por ID. ErrNotFound si no existe.
func (uc *UseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.NewProductResponse(product)
	return &resp, nil
}

// List lista productos con búsqueda opcional (insensible a tildes y mayúsculas).
func (uc *UseCase) List(search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.List(normalizeSearch(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica un patch por campo. Si el patch trae stock y difiere del
// actual, primero registra un movimiento ADJUSTMENT con el delta y después
// confirma el patch, todo en la misma transacción.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest, actor dto.Actor) (*dto.ProductResponse, error) {
	if err := validatePatch(in); err != nil {
		return nil, err
	}
	var out *dto.ProductResponse
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		if in.Stock != nil && *in.Stock != product.Stock {
			mov := &entity.Movement{
				ID:            uuid.New().String(),
				ProductID:     product.ID,
				ProductName:   product.Name,
				ProductSKU:    product.SKU,
				Type:          entity.MovementTypeAdjustment,
				Quantity:      *in.Stock - product.Stock,
				PreviousStock: product.Stock,
				NewStock:      *in.Stock,
				Reason:        in.Reason,
				UserID:        actor.UserID,
				UserName:      actor.UserName,
				CreatedAt:     now,
			}
			if err := movementRepo.Create(mov); err != nil {
				return err
			}
			product.Stock = *in.Stock
		}
		applyPatch(product, in)
		product.UpdatedAt = now
		if err := productRepo.Update(product); err != nil {
			return err
		}
		resp := dto.NewProductResponse(product)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustStock ajusta el stock por delta dentro de una transacción propia.
func (uc *UseCase) AdjustStock(ctx context.Context, id string, in dto.AdjustStockRequest, actor dto.Actor) (*dto.AdjustStockResponse, error) {
	if in.Quantity == 0 || !entity.IsValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	var out *dto.AdjustStockResponse
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
	) error {
		product, mov, err := uc.AdjustStockInTx(productRepo, movementRepo, AdjustInput{
			ProductID: id,
			Quantity:  in.Quantity,
			Type:      in.Type,
			Reason:    in.Reason,
			Actor:     actor,
			Now:       time.Now(),
		})
		if err != nil {
			return err
		}
		out = &dto.AdjustStockResponse{
			Product:   dto.NewProductResponse(product),
			Movement:  dto.NewMovementResponse(mov),
			Requested: in.Quantity,
			Applied:   mov.Quantity,
			Clamped:   mov.Quantity != in.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustInput entrada para un ajuste de stock dentro de una transacción.
type AdjustInput struct {
	ProductID string
	Quantity  int64 // delta solicitado, firmado
	Type      string
	Reason    string
	Actor     dto.Actor
	Now       time.Time
}

// AdjustStockInTx ejecuta un ajuste usando los repositorios proporcionados
// (misma transacción del caller). Lo usa la recepción de órdenes de compra
// para que N líneas y el cambio de estado confirmen juntos.
//
// Bloquea la fila del producto, aplica el clamp a cero y registra el
// movimiento con el delta APLICADO: NewStock - PreviousStock == Quantity
// se cumple siempre, también cuando hubo clamp.
func (uc *UseCase) AdjustStockInTx(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	in AdjustInput,
) (*entity.Product, *entity.Movement, error) {
	product, err := productRepo.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	previous := product.Stock
	newStock := previous + in.Quantity
	if newStock < 0 {
		newStock = 0 // el stock nunca queda negativo
	}
	mov := &entity.Movement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		ProductSKU:    product.SKU,
		Type:          in.Type,
		Quantity:      newStock - previous,
		PreviousStock: previous,
		NewStock:      newStock,
		Reason:        in.Reason,
		UserID:        in.Actor.UserID,
		UserName:      in.Actor.UserName,
		CreatedAt:     in.Now,
	}
	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return nil, nil, err
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, nil, err
	}
	product.Stock = newStock
	product.UpdatedAt = in.Now
	return product, mov, nil
}

// Delete elimina el producto. Sin cascada: el ledger conserva los snapshots
// desnormalizados y las órdenes sus nombres de producto.
func (uc *UseCase) Delete(id string) error {
	return uc.productRepo.Delete(id)
}

func validatePatch(in dto.UpdateProductRequest) error {
	if in.SKU != nil && strings.TrimSpace(*in.SKU) == "" {
		return domain.ErrInvalidInput
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return domain.ErrInvalidInput
	}
	if in.Price != nil && in.Price.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if in.Stock != nil && *in.Stock < 0 {
		return domain.ErrInvalidInput
	}
	if in.MinStock != nil && *in.MinStock < 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

func applyPatch(product *entity.Product, in dto.UpdateProductRequest) {
	if in.SKU != nil {
		product.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Location != nil {
		product.Location = *in.Location
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
}

// normalizeSearch minúsculas y sin marcas diacríticas ("Café" -> "cafe"),
// para empatar con unaccent(lower(...)) del lado SQL.
func normalizeSearch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
