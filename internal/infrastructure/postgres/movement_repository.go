package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = "id, product_id, product_name, product_sku, type, quantity, previous_stock, new_stock, reason, user_id, user_name, created_at"

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo inserta y consulta; no existe UPDATE ni DELETE sobre movements.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento del ledger.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, product_id, product_name, product_sku, type, quantity, previous_stock, new_stock, reason, user_id, user_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	userID := (*string)(nil)
	if movement.UserID != "" {
		userID = &movement.UserID
	}
	userName := (*string)(nil)
	if movement.UserName != "" {
		userName = &movement.UserName
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.ProductName, movement.ProductSKU,
		movement.Type, movement.Quantity, movement.PreviousStock, movement.NewStock,
		movement.Reason, userID, userName, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	var m entity.Movement
	var userID, userName *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ProductID, &m.ProductName, &m.ProductSKU, &m.Type,
		&m.Quantity, &m.PreviousStock, &m.NewStock, &m.Reason, &userID, &userName, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if userID != nil {
		m.UserID = *userID
	}
	if userName != nil {
		m.UserName = *userName
	}
	return &m, nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *MovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	return r.scanList(rows)
}

// ListRecent lista los movimientos más recientes de todo el ledger.
func (r *MovementRepo) ListRecent(limit int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements ORDER BY created_at DESC LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent movements: %w", err)
	}
	return r.scanList(rows)
}

func (r *MovementRepo) scanList(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var userID, userName *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.ProductSKU, &m.Type,
			&m.Quantity, &m.PreviousStock, &m.NewStock, &m.Reason, &userID, &userName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if userID != nil {
			m.UserID = *userID
		}
		if userName != nil {
			m.UserName = *userName
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
