package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/activitylog"
	"github.com/sanosuguru/go-tx-propagation/internal/txn"
)

// LogRetentionService は監査ログの保持期限管理を提供する
type LogRetentionService struct {
	coordinator *txn.Coordinator
	logRepo     activitylog.Repository
}

// NewLogRetentionService は新しい LogRetentionService を作成する
func NewLogRetentionService(c *txn.Coordinator, lr activitylog.Repository) *LogRetentionService {
	return &LogRetentionService{coordinator: c, logRepo: lr}
}

// PurgeOldLogs は保持期限を過ぎた監査ログを削除し、削除件数を返す
func (s *LogRetentionService) PurgeOldLogs(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)

	var count int
	err := txn.WithinTx(ctx, s.coordinator, txn.Required, func(ctx context.Context) error {
		var err error
		count, err = s.logRepo.DeleteOlderThan(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
