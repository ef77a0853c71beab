package activitylog

import (
	"context"
	"time"
)

// Repository は監査ログリポジトリのインターフェース
type Repository interface {
	// Save は監査ログを保存する
	Save(ctx context.Context, l *ActivityLog) error

	// FindByMessage はメッセージから監査ログを取得する
	FindByMessage(ctx context.Context, message string) (*ActivityLog, error)

	// DeleteOlderThan は指定時刻より古い監査ログを削除し、削除件数を返す
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
