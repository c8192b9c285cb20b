package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shoptrack/apiserver/types"
)

// RepairOrderRepository handles persistence for repair orders.
type RepairOrderRepository struct {
	db *sql.DB
}

func NewRepairOrderRepository(db *sql.DB) *RepairOrderRepository {
	return &RepairOrderRepository{db: db}
}

func (r *RepairOrderRepository) Create(ctx context.Context, order types.RepairOrder) (types.RepairOrder, error) {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	const query = `
		INSERT INTO repair_orders (ro, customer, vehicle, advisor, tech, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		order.RO,
		order.Customer,
		order.Vehicle,
		order.Advisor,
		order.Tech,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID); err != nil {
		return types.RepairOrder{}, err
	}
	return order, nil
}

// ListAll returns every repair order, newest identifier first. The board
// is small enough that a full scan is fine; there is no pagination.
func (r *RepairOrderRepository) ListAll(ctx context.Context) ([]types.RepairOrder, error) {
	const query = `
		SELECT id, ro, customer, vehicle, advisor, tech, status, created_at, updated_at
		FROM repair_orders
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]types.RepairOrder, 0)
	for rows.Next() {
		var order types.RepairOrder
		if err := rows.Scan(
			&order.ID,
			&order.RO,
			&order.Customer,
			&order.Vehicle,
			&order.Advisor,
			&order.Tech,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *RepairOrderRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	const query = `
		UPDATE repair_orders
		SET status = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
