package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock" validate:"min=0"`
	MinStock    int64           `json:"min_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (patch por campo).
// Si Stock viene y difiere del actual, el catálogo registra primero un
// movimiento ADJUSTMENT con el delta.
type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Location    *string          `json:"location"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock" validate:"omitempty,min=0"`
	MinStock    *int64           `json:"min_stock" validate:"omitempty,min=0"`
	Reason      string           `json:"reason"`
}

// AdjustStockRequest entrada para ajustar stock por delta.
// Type es explícito (SALE, PURCHASE, ADJUSTMENT, RETURN); nunca se infiere
// del texto de Reason.
type AdjustStockRequest struct {
	Quantity int64  `json:"quantity" validate:"required"` // delta firmado, != 0
	Type     string `json:"type" validate:"required"`
	Reason   string `json:"reason"`
}

// AdjustStockResponse resultado de un ajuste. Requested y Applied difieren
// cuando el clamp a cero recortó el delta pedido.
type AdjustStockResponse struct {
	Product   ProductResponse  `json:"product"`
	Movement  MovementResponse `json:"movement"`
	Requested int64            `json:"requested_quantity"`
	Applied   int64            `json:"applied_quantity"`
	Clamped   bool             `json:"clamped"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	MinStock    int64           `json:"min_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
