package txn

import "context"

// Provider は物理トランザクションを開くファクトリのインターフェース
// インフラ層（sqlx等）が実装する
type Provider interface {
	// Open は手動コミットモードの物理トランザクションを開き、Handle として返す
	Open(ctx context.Context) (Handle, error)
}

// Handle は手動コミットモードの物理トランザクション1つを表す
// Coordinator が束縛している間、排他的に所有する
type Handle interface {
	// Commit は物理トランザクションをコミットする
	Commit() error
	// Rollback は物理トランザクションをロールバックする
	Rollback() error
}

// SavepointRef はトランザクション内のセーブポイントへの参照
type SavepointRef interface {
	// Name はセーブポイント名を返す
	Name() string
}

// SavepointHandle はセーブポイントをサポートする Handle
// NESTED 伝播はこのインターフェースを要求し、未実装のリソースには
// ErrCapabilityUnsupported で即座に失敗する
type SavepointHandle interface {
	Handle

	// CreateSavepoint は現在位置にセーブポイントを作成する
	CreateSavepoint(ctx context.Context, name string) (SavepointRef, error)
	// RollbackTo はセーブポイント以降の変更を取り消す（セーブポイント自体は残る）
	RollbackTo(ctx context.Context, ref SavepointRef) error
	// Release はセーブポイントを破棄する（変更は維持される）
	Release(ctx context.Context, ref SavepointRef) error
}
