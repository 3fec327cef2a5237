package entity

import "time"

// Tipos de movimiento de stock (value object conceptual).
const (
	MovementTypeSale       = "SALE"
	MovementTypePurchase   = "PURCHASE"
	MovementTypeAdjustment = "ADJUSTMENT"
	MovementTypeReturn     = "RETURN"
)

// IsValidMovementType valida el tipo contra el enum. El tipo siempre lo
// declara el caller de forma explícita; nunca se infiere del texto de Reason.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeSale, MovementTypePurchase, MovementTypeAdjustment, MovementTypeReturn:
		return true
	}
	return false
}

// Movement es una entrada del ledger de auditoría de stock. Se crea exactamente
// una vez por operación que afecta stock y nunca se modifica ni elimina.
//
// ProductName y ProductSKU son snapshots desnormalizados al momento del
// movimiento: sobreviven renombres y borrados del producto.
// Quantity es el delta APLICADO (con signo), de modo que
// NewStock - PreviousStock == Quantity se cumple siempre, incluso cuando la
// operación original pidió más de lo que el clamp a cero permitió.
type Movement struct {
	ID            string
	ProductID     string
	ProductName   string
	ProductSKU    string
	Type          string // SALE, PURCHASE, ADJUSTMENT, RETURN
	Quantity      int64  // delta aplicado: positivo entra, negativo sale
	PreviousStock int64
	NewStock      int64
	Reason        string
	UserID        string // atribución, desnormalizada del token
	UserName      string
	CreatedAt     time.Time
}
