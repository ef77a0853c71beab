package member

import "context"

// Repository は会員リポジトリのインターフェース
// 書き込みはコンテキストのフローに束縛されたトランザクション内で実行される
type Repository interface {
	// Save は会員を保存する
	Save(ctx context.Context, m *Member) error

	// FindByUsername はユーザー名から会員を取得する
	FindByUsername(ctx context.Context, username string) (*Member, error)
}
