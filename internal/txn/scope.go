package txn

import (
	"context"
	"fmt"
)

// WithinTx は fn を論理トランザクションのスコープ内で実行する
// 入口で Begin し、すべての出口（正常・エラー・パニック）で Commit または
// Rollback を保証するため、フレームが放置されて物理リソースが漏れることはない
// コンテキストに実行フローがなければ新規に束縛する
func WithinTx(ctx context.Context, c *Coordinator, mode PropagationMode, fn func(ctx context.Context) error) error {
	ctx = EnsureFlow(ctx)

	f, err := c.Begin(ctx, mode)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = c.Rollback(ctx, f)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := c.Rollback(ctx, f); rbErr != nil {
			return fmt.Errorf("ロールバックに失敗 (%v)。元のエラー: %w", rbErr, err)
		}
		return err
	}

	return c.Commit(ctx, f)
}
