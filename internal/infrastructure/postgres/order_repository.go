package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/order"
)

type orderRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Amount    int       `db:"amount"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) executor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return r.db
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	query := `INSERT INTO orders (id, user_id, amount, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.executor(ctx).ExecContext(ctx, query, o.ID, o.UserID, o.Amount, string(o.Status), o.CreatedAt, o.UpdatedAt); err != nil {
		return fmt.Errorf("注文保存に失敗: %w", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.executor(ctx).ExecContext(ctx, query, string(o.Status), o.UpdatedAt, o.ID); err != nil {
		return fmt.Errorf("注文更新に失敗: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var row orderRow
	query := `SELECT id, user_id, amount, status, created_at, updated_at FROM orders WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.executor(ctx), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("注文取得に失敗: %w", err)
	}
	return &order.Order{
		ID:        row.ID,
		UserID:    row.UserID,
		Amount:    row.Amount,
		Status:    order.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
