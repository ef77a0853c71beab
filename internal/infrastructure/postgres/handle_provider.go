package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-tx-propagation/internal/txn"
)

// TxHandle は sqlx.Tx を txn.SavepointHandle として公開する
// BeginTxx で開かれた時点で手動コミットモードになっている
type TxHandle struct {
	tx *sqlx.Tx
}

// Tx は内部の sqlx.Tx を返す
// リポジトリ実装がクエリ実行に使用する
func (h *TxHandle) Tx() *sqlx.Tx {
	return h.tx
}

// Commit は物理トランザクションをコミットする
func (h *TxHandle) Commit() error {
	return h.tx.Commit()
}

// Rollback は物理トランザクションをロールバックする
func (h *TxHandle) Rollback() error {
	return h.tx.Rollback()
}

type savepointRef struct {
	name string
}

func (r savepointRef) Name() string { return r.name }

// CreateSavepoint は現在位置にセーブポイントを作成する
func (h *TxHandle) CreateSavepoint(ctx context.Context, name string) (txn.SavepointRef, error) {
	if _, err := h.tx.ExecContext(ctx, "SAVEPOINT "+pq.QuoteIdentifier(name)); err != nil {
		return nil, fmt.Errorf("セーブポイント作成に失敗: %w", err)
	}
	return savepointRef{name: name}, nil
}

// RollbackTo はセーブポイント以降の変更を取り消す
func (h *TxHandle) RollbackTo(ctx context.Context, ref txn.SavepointRef) error {
	if _, err := h.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+pq.QuoteIdentifier(ref.Name())); err != nil {
		return fmt.Errorf("セーブポイントへのロールバックに失敗: %w", err)
	}
	return nil
}

// Release はセーブポイントを破棄する
func (h *TxHandle) Release(ctx context.Context, ref txn.SavepointRef) error {
	if _, err := h.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+pq.QuoteIdentifier(ref.Name())); err != nil {
		return fmt.Errorf("セーブポイント解放に失敗: %w", err)
	}
	return nil
}

// HandleProvider は sqlx.DB から物理トランザクションを開く txn.Provider 実装
type HandleProvider struct {
	db *sqlx.DB
}

// NewHandleProvider は新しい HandleProvider を作成する
func NewHandleProvider(db *sqlx.DB) *HandleProvider {
	return &HandleProvider{db: db}
}

// Open は手動コミットモードの物理トランザクションを開く
func (p *HandleProvider) Open(ctx context.Context) (txn.Handle, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	return &TxHandle{tx: tx}, nil
}

// TxFrom はコンテキストのフローに束縛された sqlx.Tx を返す
// フローがない、トランザクションが束縛されていない、または束縛が
// この実装のものでない場合は false を返す
func TxFrom(ctx context.Context) (*sqlx.Tx, bool) {
	fl, ok := txn.FlowFrom(ctx)
	if !ok || !fl.HasTransaction() {
		return nil, false
	}
	h, ok := fl.Handle().(*TxHandle)
	if !ok {
		return nil, false
	}
	return h.tx, true
}
