package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/activitylog"
)

type activityLogRow struct {
	ID        string    `db:"id"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

type ActivityLogRepository struct {
	db *sqlx.DB
}

func NewActivityLogRepository(db *sqlx.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) executor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return r.db
}

func (r *ActivityLogRepository) Save(ctx context.Context, l *activitylog.ActivityLog) error {
	query := `INSERT INTO activity_logs (id, message, created_at) VALUES ($1, $2, $3)`
	if _, err := r.executor(ctx).ExecContext(ctx, query, l.ID, l.Message, l.CreatedAt); err != nil {
		return fmt.Errorf("監査ログ保存に失敗: %w", err)
	}

	// 失敗マーカー付きのメッセージは INSERT 後に意図的に失敗させる
	// （呼び出し元のロールバック経路を再現するためのフック）
	if l.ShouldFail() {
		return activitylog.ErrLogStorageFailed
	}
	return nil
}

func (r *ActivityLogRepository) FindByMessage(ctx context.Context, message string) (*activitylog.ActivityLog, error) {
	var row activityLogRow
	query := `SELECT id, message, created_at FROM activity_logs WHERE message = $1`
	if err := sqlx.GetContext(ctx, r.executor(ctx), &row, query, message); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, activitylog.ErrLogNotFound
		}
		return nil, fmt.Errorf("監査ログ取得に失敗: %w", err)
	}
	return &activitylog.ActivityLog{ID: row.ID, Message: row.Message, CreatedAt: row.CreatedAt}, nil
}

func (r *ActivityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM activity_logs WHERE created_at < $1`
	res, err := r.executor(ctx).ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("監査ログ削除に失敗: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return int(affected), nil
}
