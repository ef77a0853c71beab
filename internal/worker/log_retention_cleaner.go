package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-tx-propagation/internal/pkg/logger"
)

// LogPurger は保持期限を過ぎた監査ログを削除するインターフェース
type LogPurger interface {
	PurgeOldLogs(ctx context.Context, retention time.Duration) (int, error)
}

// LogRetentionCleaner は古い監査ログを定期削除するワーカー
type LogRetentionCleaner struct {
	retentionService LogPurger
	interval         time.Duration
	retention        time.Duration
	stopCh           chan struct{}
	doneCh           chan struct{}
}

// NewLogRetentionCleaner は新しいクリーナーを作成
func NewLogRetentionCleaner(
	rs LogPurger,
	interval time.Duration,
	retention time.Duration,
) *LogRetentionCleaner {
	return &LogRetentionCleaner{
		retentionService: rs,
		interval:         interval,
		retention:        retention,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *LogRetentionCleaner) Start(ctx context.Context) {
	logger.Info("監査ログクリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Duration("retention", c.retention),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("監査ログクリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("監査ログクリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はクリーナーを停止
func (c *LogRetentionCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は保持期限を過ぎた監査ログを削除
func (c *LogRetentionCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("監査ログのクリーンアップ開始")

	count, err := c.retentionService.PurgeOldLogs(ctx, c.retention)
	if err != nil {
		log.Error("監査ログのクリーンアップ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("古い監査ログを削除", zap.Int("count", count))
	} else {
		log.Debug("削除対象の監査ログなし")
	}
}
