package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. pending es el inicial; received y cancelled
// son terminales: no existe transición definida que salga de ellos.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// IsValidPurchaseStatus valida el estado contra el enum.
func IsValidPurchaseStatus(s string) bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// PurchaseItem línea de una orden de compra. ProductName es snapshot
// desnormalizado al crear la orden. Subtotal = Quantity * UnitPrice.
type PurchaseItem struct {
	ProductID   string
	ProductName string
	Quantity    int64 // > 0
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// PurchaseOrder representa una orden de compra a un proveedor.
// Total se congela al crear (suma de subtotales); las líneas no se editan
// después de la creación. ReceivedAt se fija exactamente una vez, al pasar
// a received.
type PurchaseOrder struct {
	ID           string // legible: "OC-XXXXXXXX"
	SupplierName string
	Items        []PurchaseItem
	Total        decimal.Decimal
	Status       string // pending, received, cancelled
	Notes        string
	CreatedBy    string // UserID
	CreatedAt    time.Time
	ReceivedAt   *time.Time
}

// IsTerminal indica si la orden está en un estado final.
func (p *PurchaseOrder) IsTerminal() bool {
	return p.Status == PurchaseStatusReceived || p.Status == PurchaseStatusCancelled
}
