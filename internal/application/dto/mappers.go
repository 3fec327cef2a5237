package dto

import "github.com/jortega/almacen-api/internal/domain/entity"

// NewProductResponse mapea la entidad a su respuesta.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Location:    p.Location,
		Price:       p.Price,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewMovementResponse mapea la entidad a su respuesta.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		ProductSKU:    m.ProductSKU,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		UserID:        m.UserID,
		UserName:      m.UserName,
		CreatedAt:     m.CreatedAt,
	}
}

// NewPurchaseResponse mapea la entidad a su respuesta.
func NewPurchaseResponse(p *entity.PurchaseOrder) PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, PurchaseItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return PurchaseResponse{
		ID:           p.ID,
		SupplierName: p.SupplierName,
		Items:        items,
		Total:        p.Total,
		Status:       p.Status,
		Notes:        p.Notes,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
		ReceivedAt:   p.ReceivedAt,
	}
}
