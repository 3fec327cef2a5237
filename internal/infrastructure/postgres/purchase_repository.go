package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jortega/almacen-api/internal/domain"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas viven en purchase_order_items; se insertan junto con la orden y
// no se editan después (el total queda congelado a la creación).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste la orden y sus líneas.
func (r *PurchaseRepo) Create(purchase *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_name, total, status, notes, created_by, created_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	createdBy := (*string)(nil)
	if purchase.CreatedBy != "" {
		createdBy = &purchase.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		purchase.ID, purchase.SupplierName, purchase.Total, purchase.Status,
		purchase.Notes, createdBy, purchase.CreatedAt, purchase.ReceivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	itemQuery := `
		INSERT INTO purchase_order_items (purchase_id, position, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, item := range purchase.Items {
		if _, err := r.q.Exec(context.Background(), itemQuery,
			purchase.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Subtotal,
		); err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *PurchaseRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE).
// Serializa transiciones de estado: una doble recepción concurrente espera
// aquí y ve el estado terminal al entrar.
func (r *PurchaseRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, true)
}

func (r *PurchaseRepo) get(id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_name, total, status, notes, created_by, created_at, received_at
		FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var p entity.PurchaseOrder
	var notes *string
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.SupplierName, &p.Total, &p.Status, &notes, &createdBy, &p.CreatedAt, &p.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if notes != nil {
		p.Notes = *notes
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}
	items, err := r.listItems(p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (r *PurchaseRepo) listItems(purchaseID string) ([]entity.PurchaseItem, error) {
	query := `
		SELECT product_id, product_name, quantity, unit_price, subtotal
		FROM purchase_order_items WHERE purchase_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus actualiza estado y received_at de la orden.
func (r *PurchaseRepo) UpdateStatus(id, status string, receivedAt *time.Time) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE purchase_orders SET status = $2, received_at = COALESCE($3, received_at) WHERE id = $1`,
		id, status, receivedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent lista órdenes por fecha de creación descendente, con sus líneas.
func (r *PurchaseRepo) ListRecent(limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_name, total, status, notes, created_by, created_at, received_at
		FROM purchase_orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var p entity.PurchaseOrder
		var notes *string
		var createdBy *string
		if err := rows.Scan(&p.ID, &p.SupplierName, &p.Total, &p.Status, &notes, &createdBy, &p.CreatedAt, &p.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		if notes != nil {
			p.Notes = *notes
		}
		if createdBy != nil {
			p.CreatedBy = *createdBy
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		items, err := r.listItems(p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return list, nil
}
