package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea de una orden de compra nueva.
type PurchaseItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest entrada para crear una orden de compra.
// El total se calcula en el servidor a partir de las líneas.
type CreatePurchaseRequest struct {
	SupplierName string                `json:"supplier_name" validate:"required,min=1,max=200"`
	Items        []PurchaseItemRequest `json:"items" validate:"required,min=1"`
	Notes        string                `json:"notes"`
}

// UpdatePurchaseStatusRequest entrada para transicionar el estado.
type UpdatePurchaseStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PurchaseItemResponse línea de una orden en respuestas.
type PurchaseItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse salida de una orden de compra.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	SupplierName string                 `json:"supplier_name"`
	Items        []PurchaseItemResponse `json:"items"`
	Total        decimal.Decimal        `json:"total"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	CreatedBy    string                 `json:"created_by,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ReceivedAt   *time.Time             `json:"received_at,omitempty"`
}

// PurchaseListResponse lista de órdenes, más recientes primero.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
