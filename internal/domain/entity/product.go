package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLocation ubicación asignada al crear un producto sin ubicación explícita.
const DefaultLocation = "Bodega principal"

// Product representa un producto o SKU del catálogo.
// Stock es la existencia actual y solo se modifica vía el catálogo (un único
// escritor); cada cambio de stock genera un Movement en el ledger.
type Product struct {
	ID          string
	SKU         string // código único por convención
	Name        string
	Category    string
	Description string
	Location    string
	Price       decimal.Decimal // precio de venta
	Stock       int64           // existencia actual, nunca negativa
	MinStock    int64           // umbral de reorden
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BelowMinStock indica si el producto está en o por debajo del umbral de reorden.
func (p *Product) BelowMinStock() bool {
	return p.Stock <= p.MinStock
}
